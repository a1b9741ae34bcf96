package services

import (
	"github.com/google/uuid"

	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

func requireRole(op string, actor workflow.Principal, required workflow.Role) error {
	if !actor.Valid() {
		return domainagg.NewError(domainagg.CodePermission, op, "missing or invalid principal", nil)
	}
	if !workflow.AtLeast(actor.Role, required) {
		return domainagg.PermissionDenied(op, required.String())
	}
	return nil
}

// readFailed wraps a repo read error; reads never surface driver detail.
func readFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domainagg.AsError(err); ok {
		return err
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
