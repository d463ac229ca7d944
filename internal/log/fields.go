package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldTool        = "tool"
	FieldBudgetID    = "budget_id"
	FieldAccountID   = "account_id"
	FieldCategoryID  = "category_id"
	FieldAttempt     = "attempt"
	FieldWaitMs      = "wait_ms"
	FieldRetryAfter  = "retry_after_s"
	FieldPageCursor  = "page_cursor"
	FieldBucketCount = "bucket_count"
	FieldTxnCount    = "transaction_count"
	FieldQuotaUsed   = "quota_used"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentClient    = "client"
	ComponentTools     = "tools"
	ComponentAggregate = "aggregate"
	ComponentQuota     = "quota"
	ComponentCache     = "cache"
	ComponentExport    = "export"
)

// Operations defines standard operation names
const (
	OpRequest   = "request"
	OpRetry     = "retry"
	OpPage      = "page"
	OpSummarize = "summarize"
	OpCompare   = "compare"
	OpDispatch  = "dispatch"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
