package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldAuditID is the audit job ID
	FieldAuditID = "audit_id"

	// FieldCollege is the audited college name
	FieldCollege = "college"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Standard metric fields, used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)

// WithAuditID returns a derived logger tagged with the audit job id.
func (l *Logger) WithAuditID(id string) *Logger {
	return l.WithField(FieldAuditID, id)
}

// WithCollege returns a derived logger tagged with the college name.
func (l *Logger) WithCollege(name string) *Logger {
	return l.WithField(FieldCollege, name)
}

// WithComponent returns a derived logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField(FieldComponent, name)
}
