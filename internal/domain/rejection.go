package domain

// RejectionReason identifies the first rule a record violated.
type RejectionReason string

// Rejection reason codes.
const (
	ReasonMalformedRow        RejectionReason = "MALFORMED_ROW"
	ReasonInvalidID           RejectionReason = "INVALID_ID"
	ReasonNonPositiveQuantity RejectionReason = "NON_POSITIVE_QUANTITY"
	ReasonNonPositivePrice    RejectionReason = "NON_POSITIVE_PRICE"
	ReasonMissingRegion       RejectionReason = "MISSING_REGION"
	ReasonMissingCustomer     RejectionReason = "MISSING_CUSTOMER"
)

// Rejection records a line excluded from analytics and why.
// Rejections are logged and reported but never aggregated.
type Rejection struct {
	Line   string // original raw line
	Reason RejectionReason
}
