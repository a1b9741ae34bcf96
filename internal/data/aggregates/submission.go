package aggregates

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/datatypes"
)

// submissionFields is the column set written by every create or edit of
// reviewable content. A resubmission clears the previous review.
func submissionFields(sub workflow.Submission, actor uuid.UUID, at time.Time) map[string]interface{} {
	fields := map[string]interface{}{
		"status":       sub.Status,
		"is_active":    sub.IsActive,
		"submitted_by": actor,
		"submitted_at": at,
		"review_notes": "",
		"reviewed_by":  nil,
		"reviewed_at":  nil,
	}
	if sub.Reviewed {
		fields["reviewed_by"] = actor
		fields["reviewed_at"] = at
	}
	return fields
}

func reviewAction(to workflow.Status) string {
	if to == workflow.StatusRejected {
		return "reject"
	}
	return "approve"
}

// normalizeImages accepts a JSON array of image references; empty means none.
func normalizeImages(op string, raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON("[]"), nil
	}
	var refs []json.RawMessage
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, domainagg.FieldError(op, "images", "images must be a JSON array")
	}
	return datatypes.JSON(raw), nil
}
