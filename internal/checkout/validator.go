package checkout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
)

// PaymentDetails is the card data submitted at checkout. The CVV is used for
// validation only and never travels past this package. Field presence is not
// checked at decode time; Validate owns the check ordering.
type PaymentDetails struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	CVV            string `json:"cvv"`
	Expiry         string `json:"expiry"`
}

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{13,19}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3,4}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
)

// Validator runs the payment gate checks in a fixed order, stopping at the
// first failure: cart contents, restriction gate, cardholder name, card
// number, CVV, expiry format, expiry date.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a validator using the production clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt pins the clock, for tests.
func NewValidatorAt(now func() time.Time) *Validator {
	v := NewValidator()
	if now != nil {
		v.now = now
	}
	return v
}

// Validate checks the session, cart, and payment details. The returned error
// carries a machine-readable reason in its details.
func (v *Validator) Validate(sess types.SessionContext, c *cart.Cart, details PaymentDetails) error {
	if c == nil || c.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithReason(pkgerrors.ReasonEmptyCart)
	}

	// a restricted cart needs the verified-adult fact at submission time;
	// the add-time gate reports age_restricted, this one reports the
	// missing verification
	if c.HasRestrictedItems() && !sess.AgeVerified {
		return pkgerrors.New(pkgerrors.CodeForbidden, "age verification required for restricted items").
			WithReason(pkgerrors.ReasonAgeVerificationRequired)
	}

	if strings.TrimSpace(details.CardholderName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cardholder name is required").
			WithReason(pkgerrors.ReasonMissingField).
			WithField("cardholder_name")
	}

	if !cardNumberPattern.MatchString(normalizeCardNumber(details.CardNumber)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "card number must be 13 to 19 digits").
			WithReason(pkgerrors.ReasonInvalidCardNumber)
	}

	if !cvvPattern.MatchString(strings.TrimSpace(details.CVV)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "cvv must be 3 or 4 digits").
			WithReason(pkgerrors.ReasonInvalidCVV)
	}

	expiry := strings.TrimSpace(details.Expiry)
	match := expiryPattern.FindStringSubmatch(expiry)
	if match == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry must be MM/YY").
			WithReason(pkgerrors.ReasonInvalidExpiryFormat)
	}

	if expired, err := cardExpired(match[1], match[2], v.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing expiry").
			WithReason(pkgerrors.ReasonInvalidExpiryFormat)
	} else if expired {
		return pkgerrors.New(pkgerrors.CodeValidation, "card is expired").
			WithReason(pkgerrors.ReasonCardExpired)
	}

	return nil
}

// normalizeCardNumber strips the separators customers commonly type.
func normalizeCardNumber(number string) string {
	number = strings.TrimSpace(number)
	number = strings.ReplaceAll(number, " ", "")
	return strings.ReplaceAll(number, "-", "")
}

// cardExpired treats the card as valid through the last instant of its
// expiry month.
func cardExpired(month, year string, now time.Time) (bool, error) {
	parsed, err := time.Parse("01/06", fmt.Sprintf("%s/%s", month, year))
	if err != nil {
		return false, err
	}
	endOfMonth := parsed.AddDate(0, 1, 0)
	return !now.Before(endOfMonth), nil
}
