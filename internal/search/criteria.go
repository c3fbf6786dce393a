package search

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/apperror"
)

var (
	ErrUnknownFilter = apperror.New(http.StatusBadRequest, "unknown filter key")
	ErrInvalidValue  = apperror.New(http.StatusBadRequest, "invalid filter value")
	ErrUnknownSort   = apperror.New(http.StatusBadRequest, "unknown sort key")
)

// Filter keys accepted by Criteria.Set.
const (
	KeyKeyword      = "keyword"
	KeyRegion       = "region"
	KeyCategories   = "categories"
	KeyAgeGroups    = "age_groups"
	KeyPriceMin     = "price_min"
	KeyPriceMax     = "price_max"
	KeyLessonMode   = "lesson_mode"
	KeyMinRating    = "min_rating"
	KeyAvailability = "availability"
)

// Criteria holds the independent predicates of a search. Zero values are inactive.
type Criteria struct {
	Keyword      string
	Region       string
	Categories   []string
	AgeGroups    []string
	PriceMin     *int
	PriceMax     *int
	LessonMode   string
	MinRating    *float64
	Availability bool
}

// Set replaces the predicate named key with value. Values arrive decoded
// from JSON, so numbers may be float64 or numeric strings; nil or an empty
// string clears the predicate.
func (c *Criteria) Set(key string, value any) error {
	switch key {
	case KeyKeyword:
		s, err := asString(value)
		if err != nil {
			return err
		}
		c.Keyword = s
	case KeyRegion:
		s, err := asString(value)
		if err != nil {
			return err
		}
		c.Region = s
	case KeyLessonMode:
		s, err := asString(value)
		if err != nil {
			return err
		}
		c.LessonMode = s
	case KeyCategories:
		list, err := asStrings(value)
		if err != nil {
			return err
		}
		c.Categories = list
	case KeyAgeGroups:
		list, err := asStrings(value)
		if err != nil {
			return err
		}
		c.AgeGroups = list
	case KeyPriceMin, KeyPriceMax:
		n, err := asFloat(value)
		if err != nil {
			return err
		}
		var bound *int
		if n != nil {
			if *n < math.MinInt32 || *n > math.MaxInt32 {
				return invalid(value)
			}
			v := int(*n)
			bound = &v
		}
		if key == KeyPriceMin {
			c.PriceMin = bound
		} else {
			c.PriceMax = bound
		}
	case KeyMinRating:
		n, err := asFloat(value)
		if err != nil {
			return err
		}
		c.MinRating = n
	case KeyAvailability:
		b, err := asBool(value)
		if err != nil {
			return err
		}
		c.Availability = b
	default:
		return ErrUnknownFilter
	}
	return nil
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	return "", invalid(v)
}

func asStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if x == "" {
			return nil, nil
		}
		return []string{x}, nil
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(v)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, invalid(v)
}

// asFloat accepts finite numbers only.
func asFloat(v any) (*float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, invalid(v)
		}
		f = parsed
	default:
		return nil, invalid(v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid(v)
	}
	return &f, nil
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		if x == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, invalid(v)
		}
		return b, nil
	}
	return false, invalid(v)
}

func invalid(v any) error {
	return apperror.Wrap(fmt.Errorf("unsupported value %v (%T)", v, v), ErrInvalidValue.Code, ErrInvalidValue.Message)
}
