package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	"github.com/nekogravitycat/lesson-booking-backend/internal/booking"
	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/response"
)

// Schedule is the availability table shown on the schedule step.
type Schedule interface {
	Dates() []string
	Slots(date string) ([]catalog.Slot, bool)
}

type Handler struct {
	service  booking.Service
	schedule Schedule
}

func NewHandler(service booking.Service, schedule Schedule) *Handler {
	return &Handler{
		service:  service,
		schedule: schedule,
	}
}

func flowOf(c *gin.Context) *booking.Flow {
	return auth.GetSession(c).Booking
}

// respond writes the flow state, or the error when there is one. Validation
// errors carry their field messages.
func respond(c *gin.Context, s booking.State, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFlowResponse(s))
}

func (h *Handler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, NewFlowResponse(flowOf(c).State()))
}

// Form returns the starting values of a step form.
func (h *Handler) Form(c *gin.Context) {
	var uri StepURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, booking.ErrInvalidStep)
		return
	}

	form, err := flowOf(c).Form(booking.Step(uri.Step))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, FormResponse{Step: uri.Step, Form: form})
}

func (h *Handler) MergeDraft(c *gin.Context) {
	var body booking.Draft
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, err := flowOf(c).MergeData(body)
	respond(c, s, err)
}

func (h *Handler) Next(c *gin.Context) {
	var body booking.Draft
	if err := bindOptionalJSON(c, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, err := flowOf(c).Advance(body)
	respond(c, s, err)
}

func (h *Handler) Previous(c *gin.Context) {
	s, err := flowOf(c).Retreat()
	respond(c, s, err)
}

func (h *Handler) Jump(c *gin.Context) {
	var uri StepURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, booking.ErrInvalidStep)
		return
	}

	applied, s, err := flowOf(c).JumpTo(booking.Step(uri.Step))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, JumpResponse{Applied: applied, State: NewFlowResponse(s)})
}

// Dates lists the whole availability table.
func (h *Handler) Dates(c *gin.Context) {
	dates := h.schedule.Dates()
	items := make([]DayResponse, 0, len(dates))
	for _, d := range dates {
		slots, _ := h.schedule.Slots(d)
		items = append(items, NewDayResponse(d, slots))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) TimeOptions(c *gin.Context) {
	var uri DateURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	times := flowOf(c).TimeOptions(uri.Date)
	if times == nil {
		times = []string{}
	}
	c.JSON(http.StatusOK, TimeOptionsResponse{Date: uri.Date, Times: times})
}

func (h *Handler) SelectDate(c *gin.Context) {
	var body SelectDateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, err := flowOf(c).SelectDate(body.Date)
	respond(c, s, err)
}

func (h *Handler) SelectTime(c *gin.Context) {
	var body SelectTimeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, err := flowOf(c).SelectTime(body.Time)
	respond(c, s, err)
}

// Submit starts payment processing. The response is 202 since completion
// happens after the simulated delays.
func (h *Handler) Submit(c *gin.Context) {
	var body booking.Draft
	if err := bindOptionalJSON(c, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	s, err := flowOf(c).Submit(body)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, NewFlowResponse(s))
}

func (h *Handler) ConfirmationQR(c *gin.Context) {
	png, err := flowOf(c).ConfirmationQR()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ListRequests lists the requests recorded by the current session, newest first.
func (h *Handler) ListRequests(c *gin.Context) {
	var req ListRequestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), booking.Filter{
		SessionID: auth.GetSessionID(c),
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, NewBookingRequestResponse, req.Page, req.PageSize, total))
}

func (h *Handler) GetRequest(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, booking.ErrNotFound)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingRequestResponse(r))
}

// bindOptionalJSON decodes the body when there is one.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}
