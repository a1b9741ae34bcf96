package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// JWTClaims is the staff token issued by the OAuth layer: sub is the staff id.
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// SetContextFromToken verifies tokenString and stores the principal on the
	// request data of ctx, keeping any request metadata already there.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, workflow.Principal, error)
	// IssueToken signs a token for p. Used by local tooling and tests; production
	// tokens come from the OAuth layer.
	IssueToken(p workflow.Principal, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
		now:          time.Now,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, workflow.Principal, error) {
	if tokenString == "" {
		return ctx, workflow.Principal{}, ErrUnauthenticated
	}
	if as.jwtSecretKey == "" {
		return ctx, workflow.Principal{}, fmt.Errorf("jwt secret not configured")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, workflow.Principal{}, fmt.Errorf("%w: parse token: %v", ErrUnauthenticated, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, workflow.Principal{}, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	}
	staffID, err := uuid.Parse(claims.Subject)
	if err != nil || staffID == uuid.Nil {
		return ctx, workflow.Principal{}, fmt.Errorf("%w: invalid staff id in token", ErrUnauthenticated)
	}
	role, err := workflow.ParseRole(claims.Role)
	if err != nil {
		return ctx, workflow.Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	rd := &ctxutil.RequestData{}
	if existing := ctxutil.GetRequestData(ctx); existing != nil {
		cp := *existing
		rd = &cp
	}
	rd.StaffID = staffID
	rd.Role = role.String()
	rd.TokenString = tokenString
	if rd.SessionID == "" {
		rd.SessionID = claims.ID
	}
	p := workflow.Principal{ID: staffID, Role: role}
	return ctxutil.WithRequestData(ctx, rd), p, nil
}

func (as *authService) IssueToken(p workflow.Principal, ttl time.Duration) (string, error) {
	if p.ID == uuid.Nil {
		return "", fmt.Errorf("principal id required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := as.now()
	claims := JWTClaims{
		Role: p.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// PrincipalFromContext rebuilds the principal stored by SetContextFromToken.
func PrincipalFromContext(ctx context.Context) (workflow.Principal, bool) {
	rd := ctxutil.GetRequestData(ctx)
	if !rd.Authenticated() {
		return workflow.Principal{}, false
	}
	role, err := workflow.ParseRole(rd.Role)
	if err != nil {
		return workflow.Principal{}, false
	}
	return workflow.Principal{ID: rd.StaffID, Role: role}, true
}
