package catalog

// ListParams drives the public product listing.
type ListParams struct {
	// CategorySlug narrows the listing to one category when set.
	CategorySlug string
	Cursor       string
	Limit        int
}
