package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/apierr"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	// Field names the offending input on validation failures.
	Field string `json:"field,omitempty"`
	// CurrentStatus is the state that blocked a transition.
	CurrentStatus string `json:"current_status,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeInvalidState, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodePermission:
		return http.StatusForbidden
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError renders service failures. Internal detail is logged and
// never sent to the client.
func RespondDomainError(c *gin.Context, log *logger.Logger, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	if ae, ok := apierr.From(err); ok {
		c.JSON(ae.Status, ErrorEnvelope{Error: APIError{Message: ae.Error(), Code: ae.Code, Field: ae.Param}})
		return
	}

	agg, ok := domainagg.AsError(err)
	if !ok || agg.Code == domainagg.CodeInternal || agg.Code == "" {
		if log != nil {
			log.Error("request failed", "route", c.FullPath(), "error", err)
		}
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{
			Error: APIError{Message: "internal server error", Code: "internal_error"},
		})
		return
	}

	status := StatusFor(agg.Code)
	if agg.Code == domainagg.CodeRetryable && log != nil {
		log.Warn("request hit retryable failure", "route", c.FullPath(), "error", err)
	}
	msg := agg.Message
	if msg == "" {
		msg = string(agg.Code)
	}
	body := APIError{Message: msg, Code: string(agg.Code)}
	if agg.Code == domainagg.CodeValidation {
		body.Field = agg.Field
	}
	if agg.Code == domainagg.CodeInvalidState {
		body.CurrentStatus = agg.Current
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}
