package errors

// DetailReasonKey is the details entry carrying the machine-readable
// rejection reason.
const DetailReasonKey = "reason"

// DetailFieldKey names the offending field for missing-field rejections.
const DetailFieldKey = "field"

// Rejection reasons surfaced to clients alongside the error code.
const (
	ReasonEmptyCart               = "empty_cart"
	ReasonProductNotFound         = "product_not_found"
	ReasonAgeRestricted           = "age_restricted"
	ReasonAgeVerificationRequired = "age_verification_required"
	ReasonInvalidCardNumber       = "invalid_card_number"
	ReasonInvalidCVV              = "invalid_cvv"
	ReasonInvalidExpiryFormat     = "invalid_expiry_format"
	ReasonCardExpired             = "card_expired"
	ReasonMissingField            = "missing_field"
)

// WithReason attaches a machine-readable rejection reason to the error details.
func (e *Error) WithReason(reason string) *Error {
	if e == nil {
		return nil
	}
	details, ok := e.details.(map[string]any)
	if !ok || details == nil {
		details = map[string]any{}
	}
	details[DetailReasonKey] = reason
	e.details = details
	return e
}

// WithField records which field a missing-field rejection refers to.
func (e *Error) WithField(field string) *Error {
	if e == nil {
		return nil
	}
	details, ok := e.details.(map[string]any)
	if !ok || details == nil {
		details = map[string]any{}
	}
	details[DetailFieldKey] = field
	e.details = details
	return e
}

// ReasonOf extracts the rejection reason from a coded error, if any.
func ReasonOf(err error) string {
	typed := As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return ""
	}
	reason, _ := details[DetailReasonKey].(string)
	return reason
}
