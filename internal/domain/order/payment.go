package order

import "strings"

// Card brand names derived from the leading digit of the card number.
// "Tarjeta" is the storefront's generic brand label for anything that is
// neither Visa nor Mastercard.
const (
	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandGeneric    = "Tarjeta"
)

// PaymentInput carries payment details submitted at checkout.
// Either a raw card number or a pre-derived brand/last-4 pair may be supplied.
type PaymentInput struct {
	CardNumber string
	CardBrand  string
	CardLast4  string
}

// PaymentSummary is the only payment data ever persisted with an order:
// the card brand and the last four digits. The full card number is
// discarded during derivation and never reaches the store.
type PaymentSummary struct {
	CardBrand string `gorm:"type:varchar(50)"`
	CardLast4 string `gorm:"type:varchar(4)"`
}

// DerivePaymentSummary reduces checkout payment input to a PaymentSummary.
// Non-digit characters are stripped from the raw number; the brand comes
// from the leading digit (4 Visa, 5 Mastercard, anything else generic)
// unless explicitly supplied, and the last four digits are kept when at
// least four exist.
func DerivePaymentSummary(input PaymentInput) PaymentSummary {
	summary := PaymentSummary{
		CardBrand: strings.TrimSpace(input.CardBrand),
		CardLast4: strings.TrimSpace(input.CardLast4),
	}

	digits := stripNonDigits(input.CardNumber)
	if digits == "" {
		return summary
	}

	if summary.CardBrand == "" {
		switch digits[0] {
		case '4':
			summary.CardBrand = BrandVisa
		case '5':
			summary.CardBrand = BrandMastercard
		default:
			summary.CardBrand = BrandGeneric
		}
	}

	if summary.CardLast4 == "" && len(digits) >= 4 {
		summary.CardLast4 = digits[len(digits)-4:]
	}

	return summary
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
