package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOwner       = "owner_id"
	FieldTxID        = "transaction_id"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldOccurredOn  = "occurred_on"
	FieldPanel       = "panel"
	FieldEmail       = "email"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentSync    = "sync"
	ComponentIntake  = "intake"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCache   = "cache"
)

// Operations defines standard operation names.
const (
	OpCreate     = "create"
	OpList       = "list"
	OpSignIn     = "sign_in"
	OpSignUp     = "sign_up"
	OpSignOut    = "sign_out"
	OpTranscribe = "transcribe"
	OpExtract    = "extract"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpExportRow  = "export_row"
)
