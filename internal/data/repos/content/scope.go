package content

import (
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/gorm"
)

// applyScope translates a visibility scope into a WHERE clause on a table
// carrying status and submitted_by columns.
func applyScope(q *gorm.DB, scope workflow.Scope) *gorm.DB {
	if scope.All {
		return q
	}
	public := statusStrings(scope.Public)
	own := statusStrings(scope.Own)

	cond := "status IN ?"
	args := []interface{}{public}
	if scope.IncludeLegacy {
		cond = "(status IS NULL OR " + cond + ")"
	}
	if len(own) > 0 {
		cond = "(" + cond + " OR (submitted_by = ? AND status IN ?))"
		args = append(args, scope.OwnerID, own)
	}
	return q.Where(cond, args...)
}

func statusStrings(in []workflow.Status) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == workflow.StatusLegacy {
			continue
		}
		out = append(out, string(s))
	}
	if len(out) == 0 {
		// keeps "IN ?" well formed
		out = append(out, "")
	}
	return out
}
