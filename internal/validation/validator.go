package validation

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/util"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Validator checks request DTOs and query parameters, reporting failures
// as domain.ValidationErrors.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s against its `validate` tags.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewInvalidInputError(err.Error())
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

// fieldPath drops the struct name from the namespace: QuizRequest.questions[0].text -> questions[0].text.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max":
		if fe.Kind() == reflect.Slice {
			ve := domain.NewInvalidFormatError(field, nil)
			ve.Message = field + " needs at least " + fe.Param() + " item(s)"
			if fe.Tag() == "max" {
				ve.Message = field + " allows at most " + fe.Param() + " item(s)"
			}
			return ve
		}
		ve := domain.NewInvalidFormatError(field, nil)
		ve.Code = domain.CodeOutOfRange
		if fe.Tag() == "min" {
			ve.Message = field + " must be at least " + fe.Param() + " characters"
		} else {
			ve.Message = field + " must be at most " + fe.Param() + " characters"
		}
		return ve
	case "email":
		ve := domain.NewInvalidFormatError(field, fe.Value())
		ve.Message = field + " must be a valid email address"
		return ve
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

// ValidatePagination parses limit and page query values, applying defaults.
func (v *Validator) ValidatePagination(limitRaw, pageRaw string) (dto.Pagination, domain.ValidationErrors) {
	var errs domain.ValidationErrors
	p := dto.Pagination{Limit: DefaultPageLimit, Page: 1}

	if limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		switch {
		case err != nil:
			errs = append(errs, domain.NewInvalidFormatError("limit", limitRaw))
		case limit < 1 || limit > MaxPageLimit:
			errs = append(errs, domain.NewOutOfRangeError("limit", limit, 1, MaxPageLimit))
		default:
			p.Limit = limit
		}
	}
	if pageRaw != "" {
		page, err := strconv.Atoi(pageRaw)
		switch {
		case err != nil:
			errs = append(errs, domain.NewInvalidFormatError("page", pageRaw))
		case page < 1:
			errs = append(errs, domain.ValidationError{
				Field:   "page",
				Code:    domain.CodeOutOfRange,
				Message: "page must be at least 1",
				Value:   page,
			})
		default:
			p.Page = page
		}
	}
	if len(errs) > 0 {
		return p, errs
	}
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		return p, domain.ValidationErrors{domain.NewOutOfRangeError("page", p.Page, 1, maxPage)}
	}
	p.Offset = (p.Page - 1) * p.Limit
	return p, nil
}

// ValidateAttemptID checks the ULID format of an attempt id.
func (v *Validator) ValidateAttemptID(attemptID string) domain.ValidationErrors {
	if strings.TrimSpace(attemptID) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("attempt_id")}
	}
	if !util.IsValidULID(attemptID) {
		return domain.ValidationErrors{domain.NewInvalidFormatError("attempt_id", attemptID)}
	}
	return nil
}
