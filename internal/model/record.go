package model

import "time"

// LogRecord represents one classified log entry, possibly spanning several
// raw lines. Values are immutable: continuation folding builds a new value
// via WithContinuation instead of mutating fields in place.
type LogRecord struct {
	Seq       int       `json:"seq"`       // 1-based position among produced records
	Timestamp time.Time `json:"timestamp"` // zero value for unparsed lines
	Level     string    `json:"level"`     // INFO, WARN, ERROR, DEBUG, ... or empty
	Source    string    `json:"source"`    // emitting component name
	Message   string    `json:"message"`   // may contain newlines from folded lines
}

// HasTimestamp reports whether the record carries a parsed timestamp.
// Unparsed records display an empty timestamp, never a default one.
func (r LogRecord) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// WithContinuation returns a copy of r whose message has line appended on a
// new line. The receiver is left untouched.
func (r LogRecord) WithContinuation(line string) LogRecord {
	r.Message = r.Message + "\n" + line
	return r
}

// Unparsed builds a record for a line no grammar matched: no timestamp,
// empty level and source, the raw line as the message.
func Unparsed(line string) LogRecord {
	return LogRecord{Message: line}
}
