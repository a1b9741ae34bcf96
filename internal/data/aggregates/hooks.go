package aggregates

import (
	"strings"
	"time"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type logHooks struct {
	log *logger.Logger
}

// NewLogHooks reports aggregate outcomes through the structured logger.
// Successes log at debug, failures at warn.
func NewLogHooks(log *logger.Logger) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "aggregates")}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	name = strings.TrimSpace(name)
	if status == "success" {
		h.log.Debug("aggregate write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
		return
	}
	h.log.Warn("aggregate write failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
}

func (h *logHooks) IncConflict(name string) {
	h.log.Info("aggregate conflict", "op", strings.TrimSpace(name))
}

func (h *logHooks) IncRetry(name string) {
	h.log.Info("aggregate retryable failure", "op", strings.TrimSpace(name))
}

type multiHooks []Hooks

// MultiHooks fans every event out to each non-nil hook in order.
func MultiHooks(hooks ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return noopHooks{}
	}
	return out
}

func (m multiHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range m {
		h.ObserveOperation(name, status, dur)
	}
}

func (m multiHooks) IncConflict(name string) {
	for _, h := range m {
		h.IncConflict(name)
	}
}

func (m multiHooks) IncRetry(name string) {
	for _, h := range m {
		h.IncRetry(name)
	}
}
