package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

// Claims are the access token claims issued by the auth service.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	AAL       string `json:"aal,omitempty"`
}

// Expired reports whether the token is past its expiry at now. A token
// without an expiry never expires.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenVerifier checks an access token's signature and returns its claims.
// Expiry is left to the caller, which may still refresh an expired token.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

var (
	_ TokenVerifier = (*HMACVerifier)(nil)
	_ TokenVerifier = (*JWKSVerifier)(nil)
	_ TokenVerifier = UnverifiedVerifier{}
)

// HMACVerifier checks HS256 tokens against the project's JWT secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (h *HMACVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "unexpected signing method: %v", token.Header["alg"])
		}
		return h.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	return claims, nil
}

// JWKSVerifier checks tokens signed with the project's asymmetric keys,
// fetched from its JWKS endpoint.
type JWKSVerifier struct {
	keySet *oidc.RemoteKeySet
}

func NewJWKSVerifier(ctx context.Context, jwksURL string, hc *http.Client) *JWKSVerifier {
	if hc != nil {
		ctx = oidc.ClientContext(ctx, hc)
	}
	return &JWKSVerifier{keySet: oidc.NewRemoteKeySet(ctx, jwksURL)}
}

func (j *JWKSVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	payload, err := j.keySet.VerifySignature(ctx, rawToken)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "malformed claims: %v", err)
	}
	return claims, nil
}

// UnverifiedVerifier only decodes the token. The auth service still checks
// it on the GET /user or refresh call that follows.
type UnverifiedVerifier struct{}

func (UnverifiedVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	return claims, nil
}
