package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
)

func TestValidateNamesOffendingField(t *testing.T) {
	parent := uuid.New()
	cases := []struct {
		name  string
		req   any
		field string
	}{
		{"rule content", CreateRuleRequest{CategoryID: uuid.New()}, "content"},
		{"rule status", CreateRuleRequest{CategoryID: uuid.New(), Content: "x", Status: "rejected"}, "status"},
		{"revision upper", UpdateRuleRequest{RevisionLetter: strPtr("B")}, "revision_letter"},
		{"reorder item", ReorderCategoriesRequest{Categories: []CategoryPositionRequest{{OrderIndex: 1}}}, "categories[0].id"},
		{"reorder negative", ReorderCategoriesRequest{Categories: []CategoryPositionRequest{{ID: uuid.New(), OrderIndex: -1}}}, "categories[0].order_index"},
		{"reference type", CreateReferenceRequest{TargetRuleID: uuid.New(), ReferenceType: "depends_on"}, "reference_type"},
		{"priority", CreateAnnouncementRequest{Title: "t", Content: "c", Priority: 6}, "priority"},
		{"expire hours", ScheduleAnnouncementRequest{Title: "t", Content: "c", ScheduledFor: time.Now(), AutoExpireHours: intPtr(0)}, "auto_expire_hours"},
		{"activity limit", ActivityQueryRequest{Limit: 1000}, "limit"},
		{"summary days", ActivitySummaryRequest{WindowDays: 400}, "days"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate("test.op", tc.req)
			agg, ok := domainagg.AsError(err)
			if !ok {
				t.Fatalf("want aggregate error got=%v", err)
			}
			if agg.Code != domainagg.CodeValidation || agg.Field != tc.field {
				t.Fatalf("want validation on %q got code=%s field=%q", tc.field, agg.Code, agg.Field)
			}
		})
	}

	if err := Validate("test.op", CreateRuleRequest{ParentRuleID: &parent, Content: "sub"}); err != nil {
		t.Fatalf("sub-rule without category should pass: %v", err)
	}
	if err := Validate("test.op", ActivityQueryRequest{}); err != nil {
		t.Fatalf("empty activity query should pass: %v", err)
	}
}
