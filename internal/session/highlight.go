package session

import "github.com/atikulmunna/loupe/internal/model"

// HighlightIndex returns the position of the first keyword that occurs,
// case-insensitively, in the record's source or message. Ties are broken by
// keyword order, not by which field matched. The index is stable across
// recomputations and is what presentation layers feed into a fixed palette
// (index mod palette size) to pick a color.
func HighlightIndex(rec model.LogRecord, keywords []string) (int, bool) {
	for i, kw := range keywords {
		if containsFold(rec.Source, kw) || containsFold(rec.Message, kw) {
			return i, true
		}
	}
	return 0, false
}
