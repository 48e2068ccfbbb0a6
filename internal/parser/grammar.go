package parser

import "regexp"

// grammar is one structural line pattern tried by the classifier, paired
// with the timestamp family that applies to its timestamp field.
// Recognized capture groups: ts, level, source, msg, cluster. Other groups
// (qualifiers, file locations, bracketed attributes) are structural only and
// do not reach the record.
type grammar struct {
	name   string
	format TimeFormat
	re     *regexp.Regexp
}

// captures maps the named groups of a successful match.
func (g grammar) captures(m []string) map[string]string {
	out := make(map[string]string)
	for i, name := range g.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}

// defaultGrammars returns the grammar table in priority order. Order is part
// of the classifier contract: cluster-prefixed before plain, millisecond
// precision before second precision, bracketed shapes before simple ones.
func defaultGrammars() []grammar {
	return []grammar{
		{
			// [cluster-tag] yy/MM/dd hh:mm:ss LEVEL source: message
			name:   "cluster",
			format: TimeShortYear,
			re: regexp.MustCompile(`^\[(?P<cluster>[^\]\s]+)\] ` +
				`(?P<ts>\d{2}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) ` +
				`(?P<level>[A-Z]+) (?P<source>[^\s:]+)\s*:\s?(?P<msg>.*)$`),
		},
		{
			// yyyy/MM/dd hh:mm:ss.SSS LEVEL source[qualifier] [attrs]: message
			name:   "millis-qualified",
			format: TimeMillis,
			re: regexp.MustCompile(`^(?P<ts>\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) ` +
				`(?P<level>[A-Z]+) (?P<source>[^\s\[\]]+)\[(?P<qual>[^\]]*)\]` +
				`(?: (?P<attrs>\[[^\]]*\]))?\s*:\s?(?P<msg>.*)$`),
		},
		{
			// yyyy/MM/dd hh:mm:ss.SSS LEVEL source [file]: message
			name:   "millis-simple",
			format: TimeMillis,
			re: regexp.MustCompile(`^(?P<ts>\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) ` +
				`(?P<level>[A-Z]+) (?P<source>[^\s\[\]]+) ` +
				`\[(?P<file>[^\]]*)\]\s*:\s?(?P<msg>.*)$`),
		},
		{
			// yyyy/MM/dd hh:mm:ss LEVEL source[qualifier] file [attrs]: message
			name:   "second-qualified",
			format: TimeSeconds,
			re: regexp.MustCompile(`^(?P<ts>\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) ` +
				`(?P<level>[A-Z]+) (?P<source>[^\s\[\]]+)\[(?P<qual>[^\]]*)\] ` +
				`(?P<file>\S+)(?: (?P<attrs>\[[^\]]*\]))?\s*:\s?(?P<msg>.*)$`),
		},
		{
			// yyyy/MM/dd hh:mm:ss LEVEL source [file] [attrs]: message
			name:   "second-standard",
			format: TimeSeconds,
			re: regexp.MustCompile(`^(?P<ts>\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) ` +
				`(?P<level>[A-Z]+) (?P<source>[^\s:\[\]]+)` +
				`(?: (?P<file>\S+))?(?: (?P<attrs>\[[^\]]*\]))?\s*:\s?(?P<msg>.*)$`),
		},
		{
			// yy/MM/dd hh:mm:ss LEVEL source: message
			name:   "driver",
			format: TimeShortYear,
			re: regexp.MustCompile(`^(?P<ts>\d{2}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) ` +
				`(?P<level>[A-Z]+) (?P<source>[^\s:]+)\s*:\s?(?P<msg>.*)$`),
		},
	}
}
