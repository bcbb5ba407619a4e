package repositories

// SearchFilters defines the available filters for catalog searches.
// Zero values mean "not set".
type SearchFilters struct {
	Title       string  // fuzzy-matched against titles after the SQL filters
	Genre       string  // case-insensitive substring match
	MaxPrice    float64 // inclusive upper bound on current_price
	MinRating   int     // 1-5, inclusive lower bound
	InStockOnly bool

	SortBy   string // "price" (default) or "title"
	SortDesc bool
}
