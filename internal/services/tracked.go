package services

import (
	"context"
	"encoding/json"
	"time"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
)

// TrackMeta describes the action being audited. ResourceID may be left empty
// and filled from the result by Tracked's resourceID callback.
type TrackMeta struct {
	ActionType   string
	ResourceType string
	ResourceID   string
	Details      map[string]any
}

// Tracked runs fn and records exactly one activity entry once it returns.
// The staff id and request metadata come from the request data on ctx.
func Tracked[T any](ctx context.Context, a AuditService, meta TrackMeta, fn func(ctx context.Context) (T, error), resourceID func(T) string) (T, error) {
	start := time.Now()
	out, err := fn(ctx)
	if a == nil {
		return out, err
	}

	entry := &types.ActivityLogEntry{
		ActionType:   meta.ActionType,
		ResourceType: meta.ResourceType,
		ResourceID:   meta.ResourceID,
		Success:      err == nil,
		DurationMS:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	if entry.ResourceID == "" && err == nil && resourceID != nil {
		entry.ResourceID = resourceID(out)
	}
	if len(meta.Details) > 0 {
		if b, jerr := json.Marshal(meta.Details); jerr == nil {
			entry.ActionDetails = b
		}
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		entry.StaffUserID = rd.StaffID
		entry.IPAddress = rd.IPAddress
		entry.UserAgent = rd.UserAgent
		entry.SessionID = rd.SessionID
	}
	a.Record(ctx, entry)
	return out, err
}

// Track is Tracked for operations without a result.
func Track(ctx context.Context, a AuditService, meta TrackMeta, fn func(ctx context.Context) error) error {
	_, err := Tracked(ctx, a, meta, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, nil)
	return err
}
