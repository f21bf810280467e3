package pipeline

import (
	"context"

	"sales-analytics/internal/domain"
)

// SampleLines returns a small input batch for demonstration runs,
// header already stripped. It covers every rejection reason plus a
// spread of regions, customers, and dates.
func SampleLines() []string {
	return []string{
		"T001|2026-01-05|North|Alice Johnson|Essence Mascara Lash Princess|2|9.99|19.98",
		"T002|2026-01-05|South|Bob Smith|Eyeshadow Palette with Mirror|1|19.99|19.99",
		"T003|2026-01-06|North|Alice Johnson|Powder Canister|3|14.99|44.97",
		"T004|2026-01-06|East|Carol White|Red Lipstick|5|12.99|64.95",
		"T005|2026-01-07|West|Dan Brown|Red Nail Polish|2|8.99|17.98",
		"T006|2026-01-07|South|Bob Smith|Calvin Klein CK One|1|49.99|49.99",
		"T007|2026-01-08|North|Eve Davis|Chanel Coco Noir Eau De|1|129.99|129.99",
		"T008|2026-01-08|East|Carol White|Widget,Deluxe|4|5.49|21.96",
		"T009|2026-01-09|West|Dan Brown|Essence Mascara Lash Princess|1|9.99|9.99",
		"T010|2026-01-09|South|Frank Miller|Dior J'adore|2|89.99|179.98",
		// rejected rows, one per reason
		"T011|2026-01-10|North|Alice Johnson|Broken Row|1|9.99",
		"T012|not-a-date|South|Bob Smith|Gadget|1|5.00|5.00",
		"T001|2026-01-10|North|Alice Johnson|Duplicate Id|1|9.99|9.99",
		"T013|2026-01-10|East|Carol White|Gadget|0|5.00|0.00",
		"T014|2026-01-10|West|Dan Brown|Gadget|1|-5.00|-5.00",
		"T015|2026-01-10||Eve Davis|Gadget|1|5.00|5.00",
		"T016|2026-01-10|North||Gadget|1|5.00|5.00",
	}
}

// SampleCatalog returns catalog entries matching most fixture products.
func SampleCatalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{Name: "Essence Mascara Lash Princess", Category: "beauty", Brand: "Essence", Rating: 4.94},
		{Name: "Eyeshadow Palette with Mirror", Category: "beauty", Brand: "Glamour Beauty", Rating: 3.28},
		{Name: "Powder Canister", Category: "beauty", Brand: "Velvet Touch", Rating: 3.82},
		{Name: "Red Lipstick", Category: "beauty", Brand: "Chic Cosmetics", Rating: 2.51},
		{Name: "Red Nail Polish", Category: "beauty", Brand: "Nail Couture", Rating: 3.91},
		{Name: "Calvin Klein CK One", Category: "fragrances", Brand: "Calvin Klein", Rating: 4.85},
		{Name: "Chanel Coco Noir Eau De", Category: "fragrances", Brand: "Chanel", Rating: 2.76},
		{Name: "Dior J'adore", Category: "fragrances", Brand: "Dior", Rating: 3.31},
	}
}

// StaticFetcher serves an in-memory catalog, for fixtures and tests.
type StaticFetcher struct {
	Entries []domain.CatalogEntry
	Err     error
}

// FetchAll returns the configured entries or error.
func (f *StaticFetcher) FetchAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Entries, nil
}
