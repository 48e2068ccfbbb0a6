package session

// Stats holds a point-in-time summary of one session. Counts are computed on
// demand from the record set rather than maintained reactively, so a
// snapshot is always consistent with the records it was taken from.
type Stats struct {
	Path        string         `json:"path"`
	Total       int            `json:"total"`
	Shown       int            `json:"shown"`
	Unparsed    int            `json:"unparsed"`
	LevelCounts map[string]int `json:"level_counts"`
}

// Snapshot returns the current counts: total records, records passing the
// active filters, unparsed records, and per-level totals over the full set.
func (s *Session) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	unparsed := 0
	for _, rec := range s.records {
		if rec.Level == "" {
			unparsed++
			continue
		}
		counts[rec.Level]++
	}

	return Stats{
		Path:        s.path,
		Total:       len(s.records),
		Shown:       len(s.filtered),
		Unparsed:    unparsed,
		LevelCounts: counts,
	}
}
