package session

import "github.com/atikulmunna/loupe/internal/model"

// Fold accounts for a line no grammar matched. The first such line of a file
// becomes its own unparsed record; every later one is appended to the
// message of the immediately preceding record, whatever that record is.
// Stack traces, wrapped messages, and genuinely malformed lines are all
// treated the same way — continuation is an artifact of classification
// failure, not a separate recognizer. No line is ever dropped.
func (s *Session) Fold(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		rec := model.Unparsed(line)
		rec.Seq = 1
		s.records = append(s.records, rec)
		return
	}

	last := len(s.records) - 1
	s.records[last] = s.records[last].WithContinuation(line)
}
