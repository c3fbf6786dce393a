package booking

import (
	"strings"
	"unicode"
)

const (
	minCardDigits = 16
	minCVVLength  = 3
)

// Validate checks the fields a step requires and returns one message per
// invalid field. An empty result means the step may be left.
func Validate(step Step, d Draft) FieldErrors {
	errs := FieldErrors{}
	required := func(name string, v *string) {
		if deref(v) == "" {
			errs[name] = "required"
		}
	}
	// names must contain more than whitespace
	requiredName := func(name string, v *string) {
		if strings.TrimSpace(deref(v)) == "" {
			errs[name] = "required"
		}
	}

	switch step {
	case StepLessonDetails:
		required("duration", d.Duration)
		required("participant_count", d.ParticipantCount)
		required("age_group", d.AgeGroup)
		required("lesson_type", d.LessonType)

	case StepSchedule:
		required("selected_date", d.SelectedDate)
		required("selected_time", d.SelectedTime)
		required("lesson_mode", d.LessonMode)

	case StepContract:
		if !isTrue(d.AgreementAccepted) {
			errs["agreement_accepted"] = "must accept the lesson agreement"
		}
		if !isTrue(d.CancellationPolicyAccepted) {
			errs["cancellation_policy_accepted"] = "must accept the cancellation policy"
		}
		if !isTrue(d.PrivacyPolicyAccepted) {
			errs["privacy_policy_accepted"] = "must accept the privacy policy"
		}
		requiredName("signature_name", d.SignatureName)

	case StepPayment:
		method := deref(d.PaymentMethod)
		if method == "" {
			errs["payment_method"] = "required"
			break
		}
		if method != PaymentCreditCard {
			break
		}
		if countDigits(deref(d.CardNumber)) < minCardDigits {
			errs["card_number"] = "must contain 16 digits"
		}
		if deref(d.ExpiryDate) == "" {
			errs["expiry_date"] = "required"
		}
		if len(deref(d.CVV)) < minCVVLength {
			errs["cvv"] = "must be at least 3 characters"
		}
		requiredName("cardholder_name", d.CardholderName)
	}

	return errs
}

func countDigits(s string) int {
	n := 0
	for _, r := range strings.Map(dropSpace, s) {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}
