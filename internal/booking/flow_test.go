package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
)

const (
	testDelay = 20 * time.Millisecond
	waitFor   = 2 * time.Second
	tick      = 5 * time.Millisecond
)

type recorderFunc func(ctx context.Context, sessionID string, d Draft, q Quote) (*Request, error)

func (f recorderFunc) Record(ctx context.Context, sessionID string, d Draft, q Quote) (*Request, error) {
	return f(ctx, sessionID, d, q)
}

type flowFixture struct {
	flow  *Flow
	sched *scheduler.Scheduler
	svc   Service
	done  chan *Request
}

func newFlowFixture(t *testing.T, recorder Recorder) *flowFixture {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	f := &flowFixture{sched: scheduler.New(), done: make(chan *Request, 1)}
	if recorder == nil {
		f.svc = NewService(NewMemoryRepository(), NewBcryptCardHasher(4))
		recorder = f.svc
	}

	f.flow = NewFlow(FlowConfig{
		SessionID:    "session-1",
		PaymentDelay: testDelay,
		ConfirmDelay: testDelay,
		OnCompleted:  func(r *Request) { f.done <- r },
		Now:          func() time.Time { return time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC) },
	}, f.sched, cat, recorder, zap.NewNop())

	t.Cleanup(f.sched.Stop)
	return f
}

func lessonDetails() Draft {
	return Draft{Duration: ptr("60"), ParticipantCount: ptr("10"), AgeGroup: ptr("4-5歳"), LessonType: ptr("music")}
}

func contract() Draft {
	return Draft{
		AgreementAccepted:          ptr(true),
		CancellationPolicyAccepted: ptr(true),
		PrivacyPolicyAccepted:      ptr(true),
		SignatureName:              ptr("田中 太郎"),
	}
}

func payment() Draft {
	return Draft{
		PaymentMethod:  ptr(PaymentCreditCard),
		CardNumber:     ptr("4111 1111 1111 1111"),
		ExpiryDate:     ptr("12/27"),
		CVV:            ptr("123"),
		CardholderName: ptr("TARO TANAKA"),
	}
}

// toPayment walks a fresh flow to the payment step.
func (f *flowFixture) toPayment(t *testing.T) {
	t.Helper()
	_, err := f.flow.Advance(lessonDetails())
	require.NoError(t, err)
	_, err = f.flow.SelectDate("2025-10-18")
	require.NoError(t, err)
	_, err = f.flow.SelectTime("11:30")
	require.NoError(t, err)
	_, err = f.flow.Advance(Draft{LessonMode: ptr("onsite")})
	require.NoError(t, err)
	_, err = f.flow.Advance(contract())
	require.NoError(t, err)
	require.Equal(t, StepPayment, f.flow.State().Step)
}

func TestAdvanceValidStepOne(t *testing.T) {
	f := newFlowFixture(t, nil)
	_, err := f.flow.MergeData(Draft{SpecialRequirements: ptr("none")})
	require.NoError(t, err)

	s, err := f.flow.Advance(lessonDetails())
	require.NoError(t, err)

	assert.Equal(t, StepSchedule, s.Step)
	assert.Empty(t, s.Errors)
	assert.ElementsMatch(t,
		[]string{"duration", "participant_count", "age_group", "lesson_type", "special_requirements"},
		s.Draft.Keys())
}

func TestAdvanceInvalidStepOneKeepsStep(t *testing.T) {
	f := newFlowFixture(t, nil)

	s, err := f.flow.Advance(Draft{Duration: ptr("60"), LessonType: ptr("")})
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, StepLessonDetails, s.Step)
	assert.Equal(t, []string{"age_group", "lesson_type", "participant_count"}, sortedKeys(s.Errors))
	assert.Empty(t, s.Draft.Keys(), "a failed advance merges nothing")
}

func TestJumpToAheadIsNoop(t *testing.T) {
	f := newFlowFixture(t, nil)
	_, err := f.flow.Advance(lessonDetails())
	require.NoError(t, err)

	for _, n := range []Step{3, 4, 5, 0} {
		applied, s, err := f.flow.JumpTo(n)
		require.NoError(t, err)
		assert.False(t, applied, "jump to %d", n)
		assert.Equal(t, StepSchedule, s.Step)
	}

	applied, s, err := f.flow.JumpTo(StepLessonDetails)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StepLessonDetails, s.Step)
	assert.Equal(t, "60", *s.Draft.Duration, "going back keeps accepted fields")
}

func TestRetreat(t *testing.T) {
	f := newFlowFixture(t, nil)

	s, err := f.flow.Retreat()
	require.NoError(t, err)
	assert.Equal(t, StepLessonDetails, s.Step)

	_, err = f.flow.Advance(lessonDetails())
	require.NoError(t, err)
	s, err = f.flow.Retreat()
	require.NoError(t, err)
	assert.Equal(t, StepLessonDetails, s.Step)
}

func TestStepIndicators(t *testing.T) {
	f := newFlowFixture(t, nil)
	_, err := f.flow.Advance(lessonDetails())
	require.NoError(t, err)

	steps := f.flow.State().Steps
	require.Len(t, steps, 4)
	assert.True(t, steps[0].Completed)
	assert.True(t, steps[0].Clickable)
	assert.True(t, steps[1].Active)
	assert.True(t, steps[1].Clickable)
	assert.False(t, steps[1].Completed)
	assert.False(t, steps[2].Clickable)
	assert.Equal(t, "スケジュール選択", steps[1].Title)
}

func TestSelectDateClearsTime(t *testing.T) {
	f := newFlowFixture(t, nil)

	_, err := f.flow.SelectDate("2025-10-15")
	require.ErrorIs(t, err, ErrStepMismatch)

	_, err = f.flow.Advance(lessonDetails())
	require.NoError(t, err)

	_, err = f.flow.SelectTime("09:00")
	require.ErrorIs(t, err, ErrNoDateSelected)

	_, err = f.flow.SelectDate("2025-10-15")
	require.NoError(t, err)
	s, err := f.flow.SelectTime("09:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", *s.Draft.SelectedTime)

	s, err = f.flow.SelectDate("2025-10-16")
	require.NoError(t, err)
	assert.Nil(t, s.Draft.SelectedTime)
	assert.Equal(t, "2025-10-16", *s.Draft.SelectedDate)

	_, err = f.flow.SelectDate("2030-01-01")
	assert.ErrorIs(t, err, ErrDateUnavailable)
}

func TestSelectTimeRequiresOpenSlot(t *testing.T) {
	f := newFlowFixture(t, nil)
	_, err := f.flow.Advance(lessonDetails())
	require.NoError(t, err)
	_, err = f.flow.SelectDate("2025-10-15")
	require.NoError(t, err)

	_, err = f.flow.SelectTime("16:30")
	assert.ErrorIs(t, err, ErrTimeUnavailable)
	_, err = f.flow.SelectTime("23:00")
	assert.ErrorIs(t, err, ErrTimeUnavailable)

	assert.Equal(t, []string{"09:00", "10:30", "14:00", "15:30"}, f.flow.TimeOptions("2025-10-15"))
	assert.Empty(t, f.flow.TimeOptions("2030-01-01"))
}

func TestMergeDataDateChangeDropsTime(t *testing.T) {
	f := newFlowFixture(t, nil)

	_, err := f.flow.MergeData(Draft{SelectedDate: ptr("2025-10-15"), SelectedTime: ptr("09:00")})
	require.NoError(t, err)
	s, err := f.flow.MergeData(Draft{SelectedDate: ptr("2025-10-16")})
	require.NoError(t, err)
	assert.Nil(t, s.Draft.SelectedTime)
}

func TestAdvanceScheduleDateChangeRequiresTime(t *testing.T) {
	f := newFlowFixture(t, nil)
	_, err := f.flow.Advance(lessonDetails())
	require.NoError(t, err)
	_, err = f.flow.SelectDate("2025-10-18")
	require.NoError(t, err)
	_, err = f.flow.SelectTime("11:30")
	require.NoError(t, err)

	s, err := f.flow.Advance(Draft{SelectedDate: ptr("2025-10-15"), LessonMode: ptr("onsite")})
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, StepSchedule, s.Step)
	assert.Equal(t, "required", s.Errors["selected_time"])
	assert.Equal(t, "2025-10-18", *s.Draft.SelectedDate)
	assert.Equal(t, "11:30", *s.Draft.SelectedTime)

	s, err = f.flow.Advance(Draft{SelectedDate: ptr("2025-10-15"), SelectedTime: ptr("09:00"), LessonMode: ptr("onsite")})
	require.NoError(t, err)
	assert.Equal(t, StepContract, s.Step)
	assert.Equal(t, "09:00", *s.Draft.SelectedTime)
}

func TestMergeDataClearsFieldErrors(t *testing.T) {
	f := newFlowFixture(t, nil)

	_, err := f.flow.Advance(Draft{Duration: ptr("60")})
	require.ErrorIs(t, err, ErrValidation)

	s, err := f.flow.MergeData(Draft{ParticipantCount: ptr("5")})
	require.NoError(t, err)
	assert.Equal(t, []string{"age_group", "lesson_type"}, sortedKeys(s.Errors))

	s, err = f.flow.MergeData(Draft{AgeGroup: ptr("4-5歳"), LessonType: ptr("art")})
	require.NoError(t, err)
	assert.Empty(t, s.Errors)
}

func TestStateNeverExposesCVV(t *testing.T) {
	f := newFlowFixture(t, nil)
	f.toPayment(t)

	s, err := f.flow.MergeData(payment())
	require.NoError(t, err)
	assert.Nil(t, s.Draft.CVV)
	assert.Equal(t, "4111 1111 1111 1111", *s.Draft.CardNumber)

	form, err := f.flow.Form(StepPayment)
	require.NoError(t, err)
	assert.Nil(t, form.CVV)
}

func TestContractFillsSignatureDate(t *testing.T) {
	f := newFlowFixture(t, nil)

	form, err := f.flow.Form(StepContract)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-01", *form.SignatureDate)

	_, err = f.flow.Advance(lessonDetails())
	require.NoError(t, err)
	_, err = f.flow.Advance(Draft{SelectedDate: ptr("2025-10-15"), SelectedTime: ptr("09:00"), LessonMode: ptr("online")})
	require.NoError(t, err)

	bad := contract()
	bad.PrivacyPolicyAccepted = ptr(false)
	s, err := f.flow.Advance(bad)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StepContract, s.Step)

	s, err = f.flow.Advance(contract())
	require.NoError(t, err)
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, "2025-10-01", *s.Draft.SignatureDate)
}

func TestSubmitCompletesAfterDelays(t *testing.T) {
	f := newFlowFixture(t, nil)
	f.toPayment(t)

	_, err := f.flow.Submit(Draft{PaymentMethod: ptr(PaymentCreditCard), CardNumber: ptr("4111 1111 1111")})
	require.ErrorIs(t, err, ErrValidation)

	s, err := f.flow.Submit(payment())
	require.NoError(t, err)
	assert.Equal(t, PhaseProcessing, s.Phase)
	assert.False(t, s.Completed)

	_, err = f.flow.Retreat()
	assert.ErrorIs(t, err, ErrProcessing)
	_, err = f.flow.MergeData(Draft{Duration: ptr("90")})
	assert.ErrorIs(t, err, ErrProcessing)
	_, err = f.flow.ConfirmationQR()
	assert.ErrorIs(t, err, ErrNotCompleted)

	var req *Request
	select {
	case req = <-f.done:
	case <-time.After(waitFor):
		t.Fatal("booking request was not recorded")
	}

	s = f.flow.State()
	assert.Equal(t, PhaseCompleted, s.Phase)
	assert.True(t, s.Completed)
	assert.Equal(t, req.ID, s.RequestID)
	assert.Equal(t, "**** **** **** 1111", *s.Draft.CardNumber)
	assert.Nil(t, s.Draft.CVV)
	assert.Equal(t, 9000, s.Quote.LessonFee)

	assert.Equal(t, "1111", req.CardLast4)
	assert.Nil(t, req.Draft.CVV)
	assert.Equal(t, "**** **** **** 1111", *req.Draft.CardNumber)

	_, err = f.flow.Advance(Draft{})
	assert.ErrorIs(t, err, ErrCompleted)

	png, err := f.flow.ConfirmationQR()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	stored, err := f.svc.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-1", stored.SessionID)
}

func TestSubmitOnlyOnPaymentStep(t *testing.T) {
	f := newFlowFixture(t, nil)
	_, err := f.flow.Submit(payment())
	assert.ErrorIs(t, err, ErrStepMismatch)
}

func TestSubmitRecordFailureReturnsToEditing(t *testing.T) {
	var once sync.Once
	failed := make(chan struct{})
	f := newFlowFixture(t, recorderFunc(func(context.Context, string, Draft, Quote) (*Request, error) {
		once.Do(func() { close(failed) })
		return nil, errors.New("archive unavailable")
	}))
	f.toPayment(t)

	_, err := f.flow.Submit(payment())
	require.NoError(t, err)

	<-failed
	require.Eventually(t, func() bool { return f.flow.State().Phase == PhaseEditing }, waitFor, tick)

	s := f.flow.State()
	assert.Equal(t, StepPayment, s.Step)
	assert.Contains(t, s.Errors, "submit")
	assert.False(t, s.Completed)
}

func TestStoppedSchedulerDiscardsCompletion(t *testing.T) {
	f := newFlowFixture(t, nil)
	f.toPayment(t)

	_, err := f.flow.Submit(payment())
	require.NoError(t, err)

	f.sched.Stop()
	f.flow.Close()

	time.Sleep(3 * testDelay)
	s := f.flow.State()
	assert.Equal(t, PhaseProcessing, s.Phase)
	assert.Empty(t, s.RequestID)
	assert.Empty(t, f.done)
}
