package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is everything one API request knows about its caller: the
// correlation ids, the client metadata the activity log stores, and, after
// auth, the staff principal.
type RequestData struct {
	TraceID   string
	RequestID string

	IPAddress string
	UserAgent string
	SessionID string

	StaffID     uuid.UUID
	Role        string
	TokenString string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

func (rd *RequestData) Authenticated() bool {
	return rd != nil && rd.StaffID != uuid.Nil
}

// LogFields renders the non-empty parts as logger key/value pairs.
// The bearer token is never included.
func (rd *RequestData) LogFields() []interface{} {
	if rd == nil {
		return nil
	}
	var kv []interface{}
	add := func(k, v string) {
		if v != "" {
			kv = append(kv, k, v)
		}
	}
	add("trace_id", rd.TraceID)
	add("request_id", rd.RequestID)
	if rd.Authenticated() {
		add("staff_id", rd.StaffID.String())
		add("role", rd.Role)
	}
	add("session_id", rd.SessionID)
	add("client_ip", rd.IPAddress)
	return kv
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
