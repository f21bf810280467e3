package domain

// CatalogEntry is read-only reference data from the external product
// catalog, keyed by normalized product name.
type CatalogEntry struct {
	Name     string
	Category string
	Brand    string
	Rating   float64
}
