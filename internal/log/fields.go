package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldBudgetID      = "budget_id"
	FieldGoalID        = "goal_id"
	FieldReminderID    = "reminder_id"
	FieldCategoryID    = "category_id"
	FieldAmountCents   = "amount_cents"
	FieldMonth         = "month"
	FieldYear          = "year"
	FieldEvent         = "event"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentBackend   = "backend"
	ComponentSummary   = "summary"
	ComponentBudget    = "budget"
	ComponentSavings   = "savings"
	ComponentReminder  = "reminder"
	ComponentRateLimit = "rate_limit"
)
