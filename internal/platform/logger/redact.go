package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/envutil"
)

const redacted = "[REDACTED]"

// Keys containing these are dropped outright.
var secretKeyParts = []string{"token", "authorization", "secret", "cookie", "password", "webhook"}

// Keys containing these are correlatable but must not appear in clear text.
var hashedKeyParts = []string{"session_id", "client_ip", "ip_address"}

// redactor rewrites log values by key. A nil redactor passes values through.
type redactor struct {
	salt string
}

func redactorFromEnv() *redactor {
	if !envutil.Bool("LOG_REDACTION_ENABLED", true) {
		return nil
	}
	return &redactor{salt: envutil.String("LOG_HASH_SALT", "")}
}

func (r *redactor) apply(kv []interface{}) []interface{} {
	if r == nil || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.value(normalizeKey(out[i]), out[i+1])
	}
	return out
}

func (r *redactor) value(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case containsAny(key, secretKeyParts):
		return redacted
	case containsAny(key, hashedKeyParts):
		return r.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = r.value(normalizeKey(k), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func (r *redactor) hash(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(key string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

func normalizeKey(k interface{}) string {
	return strings.ToLower(strings.TrimSpace(stringify(k)))
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
