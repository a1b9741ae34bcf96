package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
)

// Request records accepted by the services. Handlers bind them from JSON or
// query strings; every service method validates its record before use.

type CreateRuleRequest struct {
	CategoryID   uuid.UUID       `json:"category_id" validate:"required_without=ParentRuleID"`
	ParentRuleID *uuid.UUID      `json:"parent_rule_id,omitempty"`
	Title        string          `json:"title" validate:"max=255"`
	Content      string          `json:"content" validate:"required"`
	Images       json.RawMessage `json:"images,omitempty"`
	Status       string          `json:"status,omitempty" validate:"omitempty,oneof=draft pending_approval approved"`
}

type UpdateRuleRequest struct {
	Title          *string         `json:"title,omitempty" validate:"omitempty,max=255"`
	Content        *string         `json:"content,omitempty" validate:"omitempty,min=1"`
	Images         json.RawMessage `json:"images,omitempty"`
	RevisionLetter *string         `json:"revision_letter,omitempty" validate:"omitempty,len=1,lowercase,alpha"`
	Status         string          `json:"status,omitempty" validate:"omitempty,oneof=draft pending_approval approved"`
}

type ListRulesRequest struct {
	CategoryID *uuid.UUID `form:"category_id"`
	Status     string     `form:"status" validate:"omitempty,oneof=draft pending_approval approved rejected"`
}

type SearchRulesRequest struct {
	Query string `form:"q" validate:"required,min=2,max=200"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

type ReviewRequest struct {
	Notes string `json:"review_notes" validate:"max=2000"`
}

type CreateCategoryRequest struct {
	LetterCode  string `json:"letter_code" validate:"required,len=1,alpha"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  *int   `json:"order_index,omitempty" validate:"omitempty,min=0"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type CategoryPositionRequest struct {
	ID         uuid.UUID `json:"id" validate:"required"`
	OrderIndex int       `json:"order_index" validate:"min=0"`
}

type ReorderCategoriesRequest struct {
	Categories []CategoryPositionRequest `json:"categories" validate:"required,min=1,dive"`
}

type CreateReferenceRequest struct {
	TargetRuleID     uuid.UUID `json:"target_rule_id" validate:"required"`
	ReferenceType    string    `json:"reference_type,omitempty" validate:"omitempty,oneof=related supersedes clarifies conflicts_with see_also"`
	ReferenceContext string    `json:"reference_context,omitempty" validate:"max=500"`
	IsBidirectional  *bool     `json:"is_bidirectional,omitempty"`
}

type CreateAnnouncementRequest struct {
	Title     string     `json:"title" validate:"required,max=255"`
	Content   string     `json:"content" validate:"required"`
	Priority  int        `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Status    string     `json:"status,omitempty" validate:"omitempty,oneof=draft pending_approval approved"`
}

type UpdateAnnouncementRequest struct {
	Title     *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content   *string    `json:"content,omitempty" validate:"omitempty,min=1"`
	Priority  *int       `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Status    string     `json:"status,omitempty" validate:"omitempty,oneof=draft pending_approval approved"`
}

type ListAnnouncementsRequest struct {
	IncludeExpired bool `form:"include_expired"`
}

type ScheduleAnnouncementRequest struct {
	Title           string    `json:"title" validate:"required,max=255"`
	Content         string    `json:"content" validate:"required"`
	Priority        int       `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	ScheduledFor    time.Time `json:"scheduled_for" validate:"required"`
	AutoExpireHours *int      `json:"auto_expire_hours,omitempty" validate:"omitempty,min=1,max=8760"`
}

type ListScheduledRequest struct {
	IncludePublished bool `form:"include_published"`
}

type ActivityQueryRequest struct {
	StaffUserID  *uuid.UUID `form:"staff_user_id"`
	ActionType   string     `form:"action_type" validate:"max=64"`
	ResourceType string     `form:"resource_type" validate:"max=64"`
	From         *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To           *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit        int        `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset       int        `form:"offset" validate:"min=0"`
}

type ActivitySummaryRequest struct {
	StaffUserID *uuid.UUID `form:"staff_user_id"`
	WindowDays  int        `form:"days" validate:"omitempty,min=1,max=365"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// Validate checks a request record and reports the first offending field as
// a validation error.
func Validate(op string, req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	fe := verrs[0]
	return domainagg.FieldError(op, fieldPath(fe), describe(fe))
}

// fieldPath drops the top-level struct name: "categories[0].id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "alpha":
		return "must contain letters only"
	case "lowercase":
		return "must be lower-case"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
