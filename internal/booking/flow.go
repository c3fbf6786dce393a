package booking

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Availability is the per-date slot table the schedule step reads from.
type Availability interface {
	Dates() []string
	OpenTimes(date string) []string
	Slot(date, time string) (catalog.Slot, bool)
}

type FlowConfig struct {
	SessionID     string
	PaymentDelay  time.Duration
	ConfirmDelay  time.Duration
	RecordTimeout time.Duration
	// OnCompleted runs after a request has been recorded, with the flow locked.
	OnCompleted func(*Request)
	Now         func() time.Time
}

// Flow is the booking wizard of one session. Delayed transitions run on
// the session scheduler and re-check the phase before touching state.
type Flow struct {
	mu       sync.Mutex
	cfg      FlowConfig
	sched    *scheduler.Scheduler
	schedule Availability
	recorder Recorder
	log      *zap.Logger

	step      Step
	phase     Phase
	draft     Draft
	errs      FieldErrors
	payment   Draft
	requestID string
	closed    bool
}

func NewFlow(cfg FlowConfig, sched *scheduler.Scheduler, schedule Availability, recorder Recorder, log *zap.Logger) *Flow {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 5 * time.Second
	}
	return &Flow{
		cfg:      cfg,
		sched:    sched,
		schedule: schedule,
		recorder: recorder,
		log:      log.With(zap.String("session_id", cfg.SessionID)),
		step:     FirstStep,
		phase:    PhaseEditing,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

// Form returns the values the form of step starts from: the draft, with
// preset defaults for fields that were never set.
func (f *Flow) Form(step Step) (Draft, error) {
	if !step.Valid() {
		return Draft{}, ErrInvalidStep
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	form := Defaults(step)
	if step == StepContract {
		today := f.today()
		form.SignatureDate = &today
	}
	form.Merge(f.draft)
	form.CVV = nil
	return form, nil
}

// MergeData applies partial to the draft without validation and clears the
// errors of the fields it sets.
func (f *Flow) MergeData(partial Draft) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return f.stateLocked(), err
	}

	mergeInput(&f.draft, partial)
	for _, k := range partial.Keys() {
		delete(f.errs, k)
	}
	return f.stateLocked(), nil
}

// Advance validates the active step against the draft merged with form.
// On success the merge is kept and the flow moves one step forward; on
// failure nothing changes except the reported field errors.
func (f *Flow) Advance(form Draft) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return f.stateLocked(), err
	}

	candidate := f.draft.Clone()
	mergeInput(&candidate, form)
	if f.step == StepContract && candidate.SignatureDate == nil {
		today := f.today()
		candidate.SignatureDate = &today
	}

	if errs := Validate(f.step, candidate); len(errs) > 0 {
		f.errs = errs
		return f.stateLocked(), apperror.WithFields(ErrValidation, errs)
	}

	f.draft = candidate
	f.errs = nil
	if f.step < LastStep {
		f.step++
	}
	return f.stateLocked(), nil
}

func (f *Flow) Retreat() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return f.stateLocked(), err
	}
	if f.step > FirstStep {
		f.step--
		f.errs = nil
	}
	return f.stateLocked(), nil
}

// JumpTo moves to an already reached step. Targets ahead of the current
// step, or outside the wizard, leave the flow untouched and report false.
func (f *Flow) JumpTo(n Step) (bool, State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return false, f.stateLocked(), err
	}
	if !n.Valid() || n > f.step {
		return false, f.stateLocked(), nil
	}
	if n != f.step {
		f.step = n
		f.errs = nil
	}
	return true, f.stateLocked(), nil
}

// TimeOptions lists the open times of date. Unknown dates have none.
func (f *Flow) TimeOptions(date string) []string {
	return f.schedule.OpenTimes(date)
}

func (f *Flow) SelectDate(date string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.scheduleStepLocked(); err != nil {
		return f.stateLocked(), err
	}
	if !slices.Contains(f.schedule.Dates(), date) {
		return f.stateLocked(), ErrDateUnavailable
	}

	f.draft.SelectedDate = &date
	f.draft.SelectedTime = nil
	return f.stateLocked(), nil
}

func (f *Flow) SelectTime(t string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.scheduleStepLocked(); err != nil {
		return f.stateLocked(), err
	}
	date := deref(f.draft.SelectedDate)
	if date == "" {
		return f.stateLocked(), ErrNoDateSelected
	}
	if slot, ok := f.schedule.Slot(date, t); !ok || !slot.Open {
		return f.stateLocked(), ErrTimeUnavailable
	}

	f.draft.SelectedTime = &t
	return f.stateLocked(), nil
}

// Submit validates the payment step and starts the simulated payment.
// The flow is read-only until the request has been recorded.
func (f *Flow) Submit(form Draft) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return f.stateLocked(), err
	}
	if f.step != LastStep {
		return f.stateLocked(), ErrStepMismatch
	}

	candidate := f.draft.Clone()
	mergeInput(&candidate, form)
	if errs := Validate(StepPayment, candidate); len(errs) > 0 {
		f.errs = errs
		return f.stateLocked(), apperror.WithFields(ErrValidation, errs)
	}

	f.errs = nil
	f.payment = form.Clone()
	f.phase = PhaseProcessing
	f.sched.After(f.cfg.PaymentDelay, f.confirmPayment)

	f.log.Info("booking payment started")
	return f.stateLocked(), nil
}

// ConfirmationQR renders the recorded request id once the flow is completed.
func (f *Flow) ConfirmationQR() ([]byte, error) {
	f.mu.Lock()
	id := f.requestID
	completed := f.phase == PhaseCompleted
	f.mu.Unlock()

	if !completed {
		return nil, ErrNotCompleted
	}
	return ConfirmationQR(id)
}

// Close makes any still scheduled transition a no-op.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *Flow) confirmPayment() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.phase != PhaseProcessing {
		return
	}
	f.phase = PhaseConfirmed
	f.sched.After(f.cfg.ConfirmDelay, f.complete)
}

func (f *Flow) complete() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.phase != PhaseConfirmed {
		return
	}

	final := f.draft.Clone()
	final.Merge(f.payment)

	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.RecordTimeout)
	defer cancel()

	req, err := f.recorder.Record(ctx, f.cfg.SessionID, final, f.quote(final))
	if err != nil {
		f.log.Error("record booking request failed", zap.Error(err))
		f.phase = PhaseEditing
		f.errs = FieldErrors{"submit": "booking request could not be recorded, please try again"}
		return
	}

	f.draft = req.Draft.Clone()
	f.payment = Draft{}
	f.phase = PhaseCompleted
	f.requestID = req.ID
	f.log.Info("booking request recorded", zap.String("request_id", req.ID))

	if f.cfg.OnCompleted != nil {
		f.cfg.OnCompleted(req)
	}
}

// mergeInput merges user input into d. Changing the selected date drops a
// previously selected time unless the input sets one.
func mergeInput(d *Draft, input Draft) {
	dateChanged := input.SelectedDate != nil && deref(input.SelectedDate) != deref(d.SelectedDate)
	d.Merge(input)
	if dateChanged && input.SelectedTime == nil {
		d.SelectedTime = nil
	}
}

func (f *Flow) editableLocked() error {
	switch f.phase {
	case PhaseProcessing, PhaseConfirmed:
		return ErrProcessing
	case PhaseCompleted:
		return ErrCompleted
	}
	return nil
}

func (f *Flow) scheduleStepLocked() error {
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.step != StepSchedule {
		return ErrStepMismatch
	}
	return nil
}

func (f *Flow) quote(d Draft) Quote {
	slot, ok := f.schedule.Slot(deref(d.SelectedDate), deref(d.SelectedTime))
	if !ok {
		return NewQuote(DefaultLessonFee)
	}
	return NewQuote(slot.Price)
}

func (f *Flow) today() string {
	return f.cfg.Now().Format(dateLayout)
}

func (f *Flow) stateLocked() State {
	var errs FieldErrors
	if len(f.errs) > 0 {
		errs = maps.Clone(f.errs)
	}
	draft := f.draft.Clone()
	draft.CVV = nil
	return State{
		Step:      f.step,
		Phase:     f.phase,
		Completed: f.phase == PhaseCompleted,
		Draft:     draft,
		Errors:    errs,
		RequestID: f.requestID,
		Steps:     Indicators(f.step),
		Quote:     f.quote(f.draft),
	}
}
