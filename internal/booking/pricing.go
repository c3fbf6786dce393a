package booking

const (
	DefaultLessonFee = 8000

	platformFeePercent     = 10
	taxPercent             = 10
	instructorSharePercent = 90
)

// NewQuote computes the fee breakdown for a lesson price in yen.
// Non-positive prices fall back to DefaultLessonFee.
func NewQuote(lessonFee int) Quote {
	if lessonFee <= 0 {
		lessonFee = DefaultLessonFee
	}

	platform := lessonFee * platformFeePercent / 100
	tax := (lessonFee + platform) * taxPercent / 100
	instructor := lessonFee * instructorSharePercent / 100

	return Quote{
		LessonFee:       lessonFee,
		PlatformFee:     platform,
		Tax:             tax,
		Total:           lessonFee + platform + tax,
		InstructorShare: instructor,
		FacilityShare:   lessonFee - instructor,
	}
}
