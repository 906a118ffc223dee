package audithook

// Action constants for audit events.
const (
	// Sequence actions
	ActionOrderNumberAllocated = "order_number.allocated"

	// Invoice actions
	ActionInvoiceRendered  = "invoice.rendered"
	ActionInvoiceCreated   = "invoice.created"
	ActionInvoicePreviewed = "invoice.previewed"
	ActionRenderFailed     = "invoice.render_failed"
	ActionRecordFailed     = "invoice.record_failed"
)

// Resource constants for audit events.
const (
	ResourceOrderNumber = "order_number"
	ResourceInvoice     = "invoice"
	ResourceDocument    = "document"
)

// Category constants for audit events.
const (
	CategoryBilling  = "billing"
	CategorySequence = "sequence"
	CategoryDocument = "document"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
