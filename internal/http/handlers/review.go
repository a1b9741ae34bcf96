package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

// reviewFunc is the shared shape of approve and reject.
type reviewFunc[T any] func(ctx context.Context, actor workflow.Principal, id uuid.UUID, req services.ReviewRequest) (T, error)
