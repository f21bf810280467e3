package reporting

import (
	"strconv"
	"strings"

	"sales-analytics/internal/domain"
)

// enrichedHeader mirrors the input column order with the four
// enrichment columns appended.
const enrichedHeader = "transaction_id|date|region|customer|product|quantity|unit_price|line_total|api_category|api_brand|api_rating|api_match"

// RenderEnriched renders enriched transactions in the delimited shape
// of the input file plus the enrichment columns. Unmatched rows carry
// empty enrichment fields and api_match=false.
func RenderEnriched(es []*domain.EnrichedTransaction) string {
	var sb strings.Builder
	sb.WriteString(enrichedHeader + "\n")

	for _, e := range es {
		fields := []string{
			e.TransactionID,
			e.Date.Format(dateLayout),
			e.Region,
			e.Customer,
			e.Product,
			strconv.FormatInt(e.Quantity, 10),
			e.UnitPrice.StringFixed(2),
			e.LineTotal.StringFixed(2),
			strOrEmpty(e.APICategory),
			strOrEmpty(e.APIBrand),
			ratingOrEmpty(e.APIRating),
			strconv.FormatBool(e.APIMatch),
		}
		sb.WriteString(strings.Join(fields, "|") + "\n")
	}
	return sb.String()
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ratingOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
