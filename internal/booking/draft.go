package booking

import "slices"

// Merge copies every set field of p into d. Later values win.
func (d *Draft) Merge(p Draft) {
	mergeString(&d.Duration, p.Duration)
	mergeString(&d.ParticipantCount, p.ParticipantCount)
	mergeString(&d.AgeGroup, p.AgeGroup)
	mergeString(&d.LessonType, p.LessonType)
	mergeString(&d.SpecialRequirements, p.SpecialRequirements)
	mergeList(&d.EquipmentNeeds, p.EquipmentNeeds)
	mergeString(&d.AdditionalNotes, p.AdditionalNotes)

	mergeString(&d.SelectedDate, p.SelectedDate)
	mergeString(&d.SelectedTime, p.SelectedTime)
	mergeString(&d.LessonMode, p.LessonMode)
	mergeList(&d.AlternativeDates, p.AlternativeDates)

	mergeBool(&d.AgreementAccepted, p.AgreementAccepted)
	mergeBool(&d.CancellationPolicyAccepted, p.CancellationPolicyAccepted)
	mergeBool(&d.PrivacyPolicyAccepted, p.PrivacyPolicyAccepted)
	mergeString(&d.SignatureName, p.SignatureName)
	mergeString(&d.SignatureDate, p.SignatureDate)

	mergeString(&d.PaymentMethod, p.PaymentMethod)
	if p.CardNumber != nil {
		formatted := FormatCardNumber(*p.CardNumber)
		d.CardNumber = &formatted
	}
	mergeString(&d.ExpiryDate, p.ExpiryDate)
	mergeString(&d.CVV, p.CVV)
	mergeString(&d.CardholderName, p.CardholderName)
	mergeString(&d.BillingAddress, p.BillingAddress)
	mergeBool(&d.SaveCard, p.SaveCard)
}

// Clone returns a deep copy. The card number is copied as is.
func (d Draft) Clone() Draft {
	var out Draft
	out.Merge(d)
	out.CardNumber = nil
	mergeString(&out.CardNumber, d.CardNumber)
	return out
}

// Keys lists the names of the fields that are set, in declaration order.
func (d Draft) Keys() []string {
	var keys []string
	add := func(name string, set bool) {
		if set {
			keys = append(keys, name)
		}
	}

	add("duration", d.Duration != nil)
	add("participant_count", d.ParticipantCount != nil)
	add("age_group", d.AgeGroup != nil)
	add("lesson_type", d.LessonType != nil)
	add("special_requirements", d.SpecialRequirements != nil)
	add("equipment_needs", d.EquipmentNeeds != nil)
	add("additional_notes", d.AdditionalNotes != nil)
	add("selected_date", d.SelectedDate != nil)
	add("selected_time", d.SelectedTime != nil)
	add("lesson_mode", d.LessonMode != nil)
	add("alternative_dates", d.AlternativeDates != nil)
	add("agreement_accepted", d.AgreementAccepted != nil)
	add("cancellation_policy_accepted", d.CancellationPolicyAccepted != nil)
	add("privacy_policy_accepted", d.PrivacyPolicyAccepted != nil)
	add("signature_name", d.SignatureName != nil)
	add("signature_date", d.SignatureDate != nil)
	add("payment_method", d.PaymentMethod != nil)
	add("card_number", d.CardNumber != nil)
	add("expiry_date", d.ExpiryDate != nil)
	add("cvv", d.CVV != nil)
	add("cardholder_name", d.CardholderName != nil)
	add("billing_address", d.BillingAddress != nil)
	add("save_card", d.SaveCard != nil)
	return keys
}

// Defaults returns the preset form values a step starts from when the draft
// has nothing for them yet.
func Defaults(step Step) Draft {
	switch step {
	case StepLessonDetails:
		return Draft{Duration: ptr("60"), ParticipantCount: ptr("10"), EquipmentNeeds: []string{}}
	case StepSchedule:
		return Draft{LessonMode: ptr("onsite")}
	case StepContract:
		f := false
		return Draft{AgreementAccepted: &f, CancellationPolicyAccepted: &f, PrivacyPolicyAccepted: &f}
	case StepPayment:
		return Draft{PaymentMethod: ptr(PaymentCreditCard)}
	}
	return Draft{}
}

func ptr[T any](v T) *T {
	return &v
}

func mergeString(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeBool(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeList(dst *[]string, src []string) {
	if src != nil {
		*dst = slices.Clone(src)
		if *dst == nil {
			*dst = []string{}
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
