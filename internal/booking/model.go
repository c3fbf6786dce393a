package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
)

var (
	ErrValidation       = apperror.New(http.StatusUnprocessableEntity, "booking form is incomplete")
	ErrProcessing       = apperror.New(http.StatusConflict, "payment is being processed")
	ErrCompleted        = apperror.New(http.StatusConflict, "booking request already completed")
	ErrStepMismatch     = apperror.New(http.StatusConflict, "operation not available on the current step")
	ErrInvalidStep      = apperror.New(http.StatusBadRequest, "step must be between 1 and 4")
	ErrDateUnavailable  = apperror.New(http.StatusBadRequest, "no availability on the selected date")
	ErrTimeUnavailable  = apperror.New(http.StatusBadRequest, "time slot is not available")
	ErrNoDateSelected   = apperror.New(http.StatusBadRequest, "select a date first")
	ErrNotCompleted     = apperror.New(http.StatusNotFound, "booking request has not been completed")
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking request not found")
	ErrDuplicateRequest = apperror.New(http.StatusConflict, "booking request id already used")
)

// Step is a position in the four-step booking wizard.
type Step int

const (
	StepLessonDetails Step = iota + 1
	StepSchedule
	StepContract
	StepPayment
)

const (
	FirstStep = StepLessonDetails
	LastStep  = StepPayment
)

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Phase tracks the submission lifecycle on top of the step counter.
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseProcessing Phase = "processing" // payment delay running, input disabled
	PhaseConfirmed  Phase = "confirmed"  // payment accepted, confirmation delay running
	PhaseCompleted  Phase = "completed"
)

// Payment methods.
const (
	PaymentCreditCard       = "credit_card"
	PaymentBankTransfer     = "bank_transfer"
	PaymentConvenienceStore = "convenience_store"
)

// FieldErrors maps a draft field name to its validation message.
type FieldErrors map[string]string

// Draft is the booking record accumulated across the wizard. A nil field
// has never been provided; merging only overwrites fields that are set.
type Draft struct {
	// Lesson details
	Duration            *string  `json:"duration,omitempty"`
	ParticipantCount    *string  `json:"participant_count,omitempty"`
	AgeGroup            *string  `json:"age_group,omitempty"`
	LessonType          *string  `json:"lesson_type,omitempty"`
	SpecialRequirements *string  `json:"special_requirements,omitempty"`
	EquipmentNeeds      []string `json:"equipment_needs,omitempty"`
	AdditionalNotes     *string  `json:"additional_notes,omitempty"`

	// Schedule
	SelectedDate     *string  `json:"selected_date,omitempty"`
	SelectedTime     *string  `json:"selected_time,omitempty"`
	LessonMode       *string  `json:"lesson_mode,omitempty"`
	AlternativeDates []string `json:"alternative_dates,omitempty"`

	// Contract
	AgreementAccepted          *bool   `json:"agreement_accepted,omitempty"`
	CancellationPolicyAccepted *bool   `json:"cancellation_policy_accepted,omitempty"`
	PrivacyPolicyAccepted      *bool   `json:"privacy_policy_accepted,omitempty"`
	SignatureName              *string `json:"signature_name,omitempty"`
	SignatureDate              *string `json:"signature_date,omitempty"`

	// Payment
	PaymentMethod  *string `json:"payment_method,omitempty"`
	CardNumber     *string `json:"card_number,omitempty"`
	ExpiryDate     *string `json:"expiry_date,omitempty"`
	CVV            *string `json:"cvv,omitempty"`
	CardholderName *string `json:"cardholder_name,omitempty"`
	BillingAddress *string `json:"billing_address,omitempty"`
	SaveCard       *bool   `json:"save_card,omitempty"`
}

// StepIndicator describes one entry of the progress bar.
type StepIndicator struct {
	ID          Step
	Title       string
	Description string
	Completed   bool
	Active      bool
	Clickable   bool
}

// Quote is the fee breakdown shown on the contract and payment steps (JPY).
type Quote struct {
	LessonFee       int `json:"lesson_fee"`
	PlatformFee     int `json:"platform_fee"`
	Tax             int `json:"tax"`
	Total           int `json:"total"`
	InstructorShare int `json:"instructor_share"`
	FacilityShare   int `json:"facility_share"`
}

// State is a point-in-time copy of a flow.
type State struct {
	Step      Step
	Phase     Phase
	Completed bool
	Draft     Draft
	Errors    FieldErrors
	RequestID string
	Steps     []StepIndicator
	Quote     Quote
}

// Request is a completed booking request as recorded in the archive.
// Draft never carries the CVV and its card number is masked.
type Request struct {
	ID              string
	SessionID       string
	Draft           Draft
	Quote           Quote
	CardLast4       string
	CardFingerprint string
	CreatedAt       time.Time
}

// Filter defines parameters for listing recorded requests.
type Filter struct {
	SessionID string
	Page      int
	PageSize  int
}
