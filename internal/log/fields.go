package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldKey       = "key"
	FieldBackend   = "backend"
	FieldEntryID   = "entry_id"
	FieldAmount    = "amount"
	FieldEditable  = "editable"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status_code"
	FieldDuration  = "duration_ms"
	FieldRequestID = "request_id"
	FieldAddr      = "addr"
)

// Component names
const (
	ComponentApp    = "app"
	ComponentLedger = "ledger"
	ComponentStore  = "store"
	ComponentServer = "server"
	ComponentTUI    = "tui"
)

// Operation names
const (
	OpLoad    = "load"
	OpSave    = "save"
	OpCommit  = "commit"
	OpToggle  = "toggle"
	OpStartup = "startup"
)
