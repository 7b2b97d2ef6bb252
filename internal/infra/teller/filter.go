package teller

import "strings"

// OpportunityFilter narrows the delta-neutral listing locally. Zero values
// disable the corresponding criterion; MinNetAprPct is a pointer because 0 is
// a meaningful threshold.
type OpportunityFilter struct {
	ChainID      int
	Coin         string
	MinNetAprPct *float64
	Limit        int
}

// Matches reports whether o satisfies every criterion of f (limit excluded).
func (f OpportunityFilter) Matches(o DeltaNeutralOpportunity) bool {
	if f.ChainID != 0 && o.ChainID != f.ChainID {
		return false
	}
	if f.Coin != "" && !strings.EqualFold(o.Coin, f.Coin) {
		return false
	}
	if f.MinNetAprPct != nil && o.NetAprPct < *f.MinNetAprPct {
		return false
	}
	return true
}

// FilterOpportunities keeps the entries matching f in server order, then
// truncates to f.Limit when it is positive. The input slice is not modified.
func FilterOpportunities(in []DeltaNeutralOpportunity, f OpportunityFilter) []DeltaNeutralOpportunity {
	out := make([]DeltaNeutralOpportunity, 0, len(in))
	for _, o := range in {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
