package parser

import (
	"github.com/atikulmunna/loupe/internal/model"
)

// Classifier converts raw log lines into structured records by trying an
// ordered list of line grammars. Classification is a pure function of the
// line and the grammar table; it never errors and never mutates state, so a
// single Classifier is safe to share across sessions.
type Classifier struct {
	grammars []grammar
}

// NewClassifier returns a Classifier with the built-in grammar table.
func NewClassifier() *Classifier {
	return &Classifier{grammars: defaultGrammars()}
}

// Classify evaluates the grammars in priority order and commits to the first
// structural match whose timestamp also normalizes. A structural match with
// an out-of-range date is not accepted: the line falls through to the
// remaining grammars and, if none take it, reports false so the caller can
// fold it as a continuation.
//
// The returned record has no sequence id; ids are assigned when the record
// is appended to a session.
func (c *Classifier) Classify(line string) (model.LogRecord, bool) {
	for _, g := range c.grammars {
		m := g.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fields := g.captures(m)

		ts, ok := NormalizeTimestamp(fields["ts"], g.format)
		if !ok {
			continue
		}

		source := fields["source"]
		if tag := fields["cluster"]; tag != "" {
			source = tag + " " + source
		}

		return model.LogRecord{
			Timestamp: ts,
			Level:     fields["level"],
			Source:    source,
			Message:   fields["msg"],
		}, true
	}
	return model.LogRecord{}, false
}
