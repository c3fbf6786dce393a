package http

import (
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/booking"
	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/request"
)

type StepIndicatorResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Active      bool   `json:"active"`
	Clickable   bool   `json:"clickable"`
}

type FlowResponse struct {
	CurrentStep int                     `json:"current_step"`
	Phase       string                  `json:"phase"`
	IsCompleted bool                    `json:"is_completed"`
	Draft       booking.Draft           `json:"draft"`
	Errors      map[string]string       `json:"errors,omitempty"`
	RequestID   string                  `json:"request_id,omitempty"`
	Steps       []StepIndicatorResponse `json:"steps"`
	Quote       booking.Quote           `json:"quote"`
}

func NewFlowResponse(s booking.State) FlowResponse {
	steps := make([]StepIndicatorResponse, len(s.Steps))
	for i, st := range s.Steps {
		steps[i] = StepIndicatorResponse{
			ID:          int(st.ID),
			Title:       st.Title,
			Description: st.Description,
			Completed:   st.Completed,
			Active:      st.Active,
			Clickable:   st.Clickable,
		}
	}
	return FlowResponse{
		CurrentStep: int(s.Step),
		Phase:       string(s.Phase),
		IsCompleted: s.Completed,
		Draft:       s.Draft,
		Errors:      s.Errors,
		RequestID:   s.RequestID,
		Steps:       steps,
		Quote:       s.Quote,
	}
}

// JumpResponse reports whether a step indicator click was applied.
type JumpResponse struct {
	Applied bool         `json:"applied"`
	State   FlowResponse `json:"state"`
}

type FormResponse struct {
	Step int           `json:"step"`
	Form booking.Draft `json:"form"`
}

type StepURIRequest struct {
	Step int `uri:"step" binding:"required"`
}

type DateURIRequest struct {
	Date string `uri:"date" binding:"required"`
}

type SelectDateRequest struct {
	Date string `json:"date" binding:"required"`
}

type SelectTimeRequest struct {
	Time string `json:"time" binding:"required"`
}

type SlotResponse struct {
	Time  string `json:"time"`
	Price int    `json:"price"`
	Open  bool   `json:"open"`
}

type DayResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

func NewDayResponse(date string, slots []catalog.Slot) DayResponse {
	out := DayResponse{Date: date, Slots: make([]SlotResponse, len(slots))}
	for i, s := range slots {
		out.Slots[i] = SlotResponse{Time: s.Time, Price: s.Price, Open: s.Open}
	}
	return out
}

type TimeOptionsResponse struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// ListRequestsRequest defines query parameters for listing recorded requests.
type ListRequestsRequest struct {
	request.ListParams
}

type BookingRequestResponse struct {
	ID        string        `json:"id"`
	Draft     booking.Draft `json:"draft"`
	Quote     booking.Quote `json:"quote"`
	CardLast4 string        `json:"card_last4,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewBookingRequestResponse(r *booking.Request) BookingRequestResponse {
	return BookingRequestResponse{
		ID:        r.ID,
		Draft:     r.Draft,
		Quote:     r.Quote,
		CardLast4: r.CardLast4,
		CreatedAt: r.CreatedAt,
	}
}
