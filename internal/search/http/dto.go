package http

import (
	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/search"
)

type SetFilterRequest struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
}

type SetSortRequest struct {
	Sort string `json:"sort" binding:"required"`
}

type ReviewResponse struct {
	Comment      string `json:"comment"`
	ReviewerName string `json:"reviewer_name"`
}

type InstructorResponse struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Avatar       string         `json:"avatar"`
	Specialties  []string       `json:"specialties"`
	Rating       float64        `json:"rating"`
	ReviewCount  int            `json:"review_count"`
	HourlyRate   int            `json:"hourly_rate"`
	LessonModes  []string       `json:"lesson_modes"`
	AgeGroups    []string       `json:"age_groups"`
	IsAvailable  bool           `json:"is_available"`
	Location     string         `json:"location"`
	Bio          string         `json:"bio"`
	RecentReview ReviewResponse `json:"recent_review"`
}

func NewInstructorResponse(in catalog.Instructor) InstructorResponse {
	return InstructorResponse{
		ID:          in.ID,
		Name:        in.Name,
		Avatar:      in.Avatar,
		Specialties: in.Specialties,
		Rating:      in.Rating,
		ReviewCount: in.ReviewCount,
		HourlyRate:  in.HourlyRate,
		LessonModes: in.LessonModes,
		AgeGroups:   in.AgeGroups,
		IsAvailable: in.IsAvailable,
		Location:    in.Location,
		Bio:         in.Bio,
		RecentReview: ReviewResponse{
			Comment:      in.RecentReview.Comment,
			ReviewerName: in.RecentReview.ReviewerName,
		},
	}
}

type CriteriaResponse struct {
	Keyword      string   `json:"keyword"`
	Region       string   `json:"region"`
	Categories   []string `json:"categories"`
	AgeGroups    []string `json:"age_groups"`
	PriceMin     *int     `json:"price_min"`
	PriceMax     *int     `json:"price_max"`
	LessonMode   string   `json:"lesson_mode"`
	MinRating    *float64 `json:"min_rating"`
	Availability bool     `json:"availability"`
}

type ResultResponse struct {
	Items    []InstructorResponse `json:"items"`
	Count    int                  `json:"count"`
	HasMore  bool                 `json:"has_more"`
	Loading  bool                 `json:"loading"`
	Criteria CriteriaResponse     `json:"criteria"`
	Sort     string               `json:"sort"`
}

func NewResultResponse(s search.Snapshot) ResultResponse {
	items := make([]InstructorResponse, len(s.Items))
	for i, in := range s.Items {
		items[i] = NewInstructorResponse(in)
	}
	nonNil := func(list []string) []string {
		if list == nil {
			return []string{}
		}
		return list
	}
	return ResultResponse{
		Items:   items,
		Count:   s.Count,
		HasMore: s.HasMore,
		Loading: s.Loading,
		Criteria: CriteriaResponse{
			Keyword:      s.Criteria.Keyword,
			Region:       s.Criteria.Region,
			Categories:   nonNil(s.Criteria.Categories),
			AgeGroups:    nonNil(s.Criteria.AgeGroups),
			PriceMin:     s.Criteria.PriceMin,
			PriceMax:     s.Criteria.PriceMax,
			LessonMode:   s.Criteria.LessonMode,
			MinRating:    s.Criteria.MinRating,
			Availability: s.Criteria.Availability,
		},
		Sort: string(s.Sort),
	}
}
