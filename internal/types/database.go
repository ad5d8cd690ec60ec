package types

// MySQLFilter selects journal rows. Queries are ANDed together.
type MySQLFilter struct {
	Query  []MySQLQuery `json:"query"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type MySQLQuery struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Query  string `json:"query"`
}

// Bounded caps the page size at limit. A missing or negative limit becomes
// the cap.
func (f MySQLFilter) Bounded(limit int) MySQLFilter {
	if f.Limit <= 0 || f.Limit > limit {
		f.Limit = limit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
