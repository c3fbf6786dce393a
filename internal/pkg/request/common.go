package request

import (
	"net/http"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
)

var ErrInvalidPage = apperror.New(http.StatusBadRequest, "page and page_size must be positive")

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// ListParams carries the pagination query parameters shared by list endpoints.
type ListParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize fills in defaults for missing pagination values.
func (p *ListParams) Normalize() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
}

// Validate performs custom validation for ListParams.
func (p *ListParams) Validate() error {
	if p.Page < 1 || p.PageSize < 1 || p.PageSize > 100 {
		return ErrInvalidPage
	}
	return nil
}

// Offset returns the number of items to skip for the current page.
func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
