package ingest

// QuerySet holds the Dune query ids that feed one protocol's metric tables.
// Queries are curated by hand on Dune; ids are stable once published.
type QuerySet struct {
	RevenueQueryID int64
	UserQueryID    int64
	Slug           string // listing page identifier for market cap lookups
}

// defaultQueries maps protocol symbols to their curated query sets
var defaultQueries = map[string]QuerySet{
	"LINK": {RevenueQueryID: 4953227, UserQueryID: 4953301, Slug: "chainlink"},
	"UNI":  {RevenueQueryID: 4953410, UserQueryID: 4953415, Slug: "uniswap"},
	"AAVE": {RevenueQueryID: 4953502, UserQueryID: 4953508, Slug: "aave"},
	"COMP": {RevenueQueryID: 4953601, UserQueryID: 4953605, Slug: "compound"},
	"MKR":  {RevenueQueryID: 4953702, UserQueryID: 4953709, Slug: "maker"},
	"CRV":  {RevenueQueryID: 4953801, UserQueryID: 4953812, Slug: "curve-dao-token"},
	"LDO":  {RevenueQueryID: 4953901, UserQueryID: 4953904, Slug: "lido-dao"},
}

// Registry resolves query sets for protocols, with overrides layered on the
// defaults.
type Registry struct {
	queries map[string]QuerySet
}

// NewRegistry creates a registry seeded with the curated query sets
func NewRegistry() *Registry {
	queries := make(map[string]QuerySet, len(defaultQueries))
	for symbol, qs := range defaultQueries {
		queries[symbol] = qs
	}
	return &Registry{queries: queries}
}

// Register adds or replaces the query set for a symbol
func (r *Registry) Register(symbol string, qs QuerySet) {
	r.queries[symbol] = qs
}

// Lookup returns the query set for a symbol
func (r *Registry) Lookup(symbol string) (QuerySet, bool) {
	qs, ok := r.queries[symbol]
	return qs, ok
}
