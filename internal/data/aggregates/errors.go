package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/gorm"
)

// rejection is raised inside a write body before MapError sees it.
type rejection struct {
	code domainagg.ErrorCode
	msg  string
}

func (r *rejection) Error() string { return r.msg }

func ValidationError(msg string) error {
	return &rejection{code: domainagg.CodeValidation, msg: strings.TrimSpace(msg)}
}

func ConflictError(msg string) error {
	return &rejection{code: domainagg.CodeConflict, msg: strings.TrimSpace(msg)}
}

func RetryableError(msg string) error {
	return &rejection{code: domainagg.CodeRetryable, msg: strings.TrimSpace(msg)}
}

// Postgres SQLSTATEs the write paths care about.
var pgCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,  // duplicate letter, code or edge
	"23503": domainagg.CodeNotFound,  // category or rule vanished under us
	"40001": domainagg.CodeRetryable, // serialization_failure
	"40P01": domainagg.CodeRetryable, // deadlock_detected
	"55P03": domainagg.CodeRetryable, // lock_not_available
}

// Driver messages for databases that carry no SQLSTATE (sqlite in tests).
var messageCodes = []struct {
	needle string
	code   domainagg.ErrorCode
}{
	{"duplicate key", domainagg.CodeConflict},
	{"unique constraint failed", domainagg.CodeConflict},
	{"already exists", domainagg.CodeConflict},
	{"deadlock", domainagg.CodeRetryable},
	{"serialization", domainagg.CodeRetryable},
	{"database is locked", domainagg.CodeRetryable},
	{"timeout", domainagg.CodeRetryable},
	{"temporar", domainagg.CodeRetryable},
}

// MapError turns whatever a write body returned into a *domainagg.Error.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}

	var te *workflow.TransitionError
	if errors.As(err, &te) {
		return &domainagg.Error{
			Code:    domainagg.CodeInvalidState,
			Op:      op,
			Message: te.Error(),
			Current: currentLabel(te.Current),
			Cause:   err,
		}
	}
	return domainagg.Wrap(classify(err), op, err)
}

func classify(err error) domainagg.ErrorCode {
	var r *rejection
	if errors.As(err, &r) {
		return r.code
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.CodeConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.CodeRetryable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := pgCodes[strings.TrimSpace(pgErr.Code)]; ok {
			return code
		}
	}
	msg := strings.ToLower(err.Error())
	for _, m := range messageCodes {
		if strings.Contains(msg, m.needle) {
			return m.code
		}
	}
	return domainagg.CodeInternal
}

func currentLabel(s workflow.Status) string {
	if s == workflow.StatusLegacy {
		return "legacy"
	}
	return string(s)
}
