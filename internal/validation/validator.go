package validation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/ingestion"
)

// Date layouts accepted for the date field, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
}

// Validator applies business rules to parsed candidates.
// It owns the run-scoped set of seen transaction IDs, so independent
// runs use independent Validator instances.
type Validator struct {
	seen map[string]struct{}
}

// New creates a Validator with an empty seen-ID set.
func New() *Validator {
	return &Validator{seen: make(map[string]struct{})}
}

// Validate cleans a candidate and applies the ordered business rules,
// short-circuiting on the first violation. On success it returns a
// Transaction with line_total recomputed as round(quantity*unit_price, 2);
// on failure a Rejection carrying the raw line and the first violated
// rule. A record is wholly accepted or wholly rejected.
func (v *Validator) Validate(c *domain.Candidate) (*domain.Transaction, *domain.Rejection) {
	reject := func(reason domain.RejectionReason) (*domain.Transaction, *domain.Rejection) {
		return nil, &domain.Rejection{Line: c.Line, Reason: reason}
	}

	// Cleaning precedes checks: numeric comma stripping, product-name
	// comma stripping, date coercion. An unparsable date or numeric at
	// this stage is still a malformed row.
	date, ok := parseDate(c.Date)
	if !ok {
		return reject(domain.ReasonMalformedRow)
	}

	quantity, ok := parseQuantity(c.Quantity)
	if !ok {
		return reject(domain.ReasonMalformedRow)
	}

	unitPrice, err := decimal.NewFromString(ingestion.StripThousands(c.UnitPrice))
	if err != nil {
		return reject(domain.ReasonMalformedRow)
	}

	// Product-name commas are a formatting artifact: "Widget,Pro"
	// becomes "Widget Pro", with internal whitespace collapsed.
	product := strings.Join(strings.Fields(strings.ReplaceAll(c.Product, ",", " ")), " ")

	// Rule 1: transaction_id non-empty and unique across the run.
	id := strings.TrimSpace(c.TransactionID)
	if id == "" {
		return reject(domain.ReasonInvalidID)
	}
	if _, dup := v.seen[id]; dup {
		return reject(domain.ReasonInvalidID)
	}

	// Rule 2: quantity > 0.
	if quantity <= 0 {
		return reject(domain.ReasonNonPositiveQuantity)
	}

	// Rule 3: unit_price > 0.
	if !unitPrice.IsPositive() {
		return reject(domain.ReasonNonPositivePrice)
	}

	// Rule 4: region non-empty after trimming.
	region := strings.TrimSpace(c.Region)
	if region == "" {
		return reject(domain.ReasonMissingRegion)
	}

	// Rule 5: customer non-empty after trimming.
	customer := strings.TrimSpace(c.Customer)
	if customer == "" {
		return reject(domain.ReasonMissingCustomer)
	}

	// IDs enter the seen set only on acceptance.
	v.seen[id] = struct{}{}

	// quantity * unit_price is the source of truth for line_total.
	lineTotal := unitPrice.Mul(decimal.NewFromInt(quantity)).Round(2)

	return &domain.Transaction{
		TransactionID: id,
		Date:          date,
		Region:        region,
		Customer:      customer,
		Product:       product,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		LineTotal:     lineTotal,
	}, nil
}

// parseDate coerces date text to a UTC-midnight calendar date.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseQuantity parses an integer quantity, tolerating thousands commas.
func parseQuantity(s string) (int64, bool) {
	d, err := decimal.NewFromString(ingestion.StripThousands(s))
	if err != nil {
		return 0, false
	}
	if !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}
