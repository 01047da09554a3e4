package domain

import "strings"

// UninformedToken is the reserved filter value meaning "no constraint".
const UninformedToken = "uninformed"

// FilterSet holds the normalized, optional search criteria. A nil field
// places no constraint on the query.
type FilterSet struct {
	Title    *string
	Status   *string
	Priority *string
	Number   *int
}

// NormalizeFilters turns raw request tokens into a FilterSet. Each string
// field is normalized on its own: the sentinel token or a blank value means
// unset. A number <= 0 means no number filter.
func NormalizeFilters(rawTitle, rawStatus, rawPriority string, rawNumber int) FilterSet {
	var f FilterSet
	f.Title = normalizeToken(rawTitle)
	f.Status = normalizeToken(rawStatus)
	f.Priority = normalizeToken(rawPriority)
	if rawNumber > 0 {
		n := rawNumber
		f.Number = &n
	}
	return f
}

func normalizeToken(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" || v == UninformedToken {
		return nil
	}
	return &v
}

// HasTriple reports whether any of title, status or priority is set.
func (f FilterSet) HasTriple() bool {
	return f.Title != nil || f.Status != nil || f.Priority != nil
}

// HasNumber reports whether an exact number lookup was requested.
func (f FilterSet) HasNumber() bool {
	return f.Number != nil
}

// TripleOnly returns a copy without the number key.
func (f FilterSet) TripleOnly() FilterSet {
	f.Number = nil
	return f
}
