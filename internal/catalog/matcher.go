package catalog

import (
	"strings"

	"sales-analytics/internal/domain"
)

// Normalize canonicalizes a product name for matching: case-fold,
// trim, collapse internal whitespace.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Matcher resolves a product name to a catalog entry.
// The exact matcher is the default; richer strategies (edit distance,
// token overlap) plug in behind the same method.
type Matcher interface {
	// Match returns the catalog entry for a product name, or false
	// when the catalog has no entry for it.
	Match(productName string) (*domain.CatalogEntry, bool)
}

// ExactMatcher matches on exact equality of normalized names.
type ExactMatcher struct {
	index map[string]*domain.CatalogEntry
}

// NewExactMatcher builds a matcher over a catalog snapshot.
// Duplicate normalized names resolve to the first entry encountered.
// An empty snapshot is valid: every lookup simply misses.
func NewExactMatcher(entries []domain.CatalogEntry) *ExactMatcher {
	index := make(map[string]*domain.CatalogEntry, len(entries))
	for i := range entries {
		key := Normalize(entries[i].Name)
		if key == "" {
			continue
		}
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = &entries[i]
	}
	return &ExactMatcher{index: index}
}

// Match implements Matcher.
func (m *ExactMatcher) Match(productName string) (*domain.CatalogEntry, bool) {
	e, ok := m.index[Normalize(productName)]
	if !ok {
		return nil, false
	}
	entry := *e
	return &entry, true
}

// Verify interface compliance at compile time.
var _ Matcher = (*ExactMatcher)(nil)

// Enrich maps every transaction through the matcher. Unmatched
// transactions come back with APIMatch=false and nil enrichment
// fields; enrichment never fails a record.
func Enrich(transactions []*domain.Transaction, m Matcher) []*domain.EnrichedTransaction {
	enriched := make([]*domain.EnrichedTransaction, len(transactions))
	for i, t := range transactions {
		e := &domain.EnrichedTransaction{Transaction: *t}
		if entry, ok := m.Match(t.Product); ok {
			e.APICategory = &entry.Category
			e.APIBrand = &entry.Brand
			e.APIRating = &entry.Rating
			e.APIMatch = true
		}
		enriched[i] = e
	}
	return enriched
}
