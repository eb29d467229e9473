package relevance

import "strings"

// Filter is the keyword include/exclude policy applied to candidate text.
// Exclusion is checked first and is authoritative: an exclude hit drops the
// candidate even when an include term also matches. An empty include set
// keeps every non-excluded candidate.
type Filter struct {
	Include []string
	Exclude []string
}

// Keep reports whether a candidate with the given title and summary passes
// the policy. Matching is case-insensitive substring over title+summary.
func (f Filter) Keep(title, summary string) bool {
	text := strings.ToLower(title + " " + summary)

	for _, term := range f.Exclude {
		if term == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(term)) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}
	for _, term := range f.Include {
		if term == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
