package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"babsy-voucher-platform/internal/domain/model"
)

// ===== Session/JWT primitives =====

type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

// Identity is what a verified token tells us about the caller. PartnerID is
// set only for partner staff accounts.
type Identity struct {
	UserID    string
	UserType  model.UserType
	PartnerID string
}

type sessionClaims struct {
	UserType  string `json:"user_type"`
	PartnerID string `json:"partner_id,omitempty"`
	jwt.RegisteredClaims
}

// Mint signs a token for the given identity. Used by the seed tool and tests;
// production tokens come from the SSO gateway with the same shared secret.
func (a *AuthManager) Mint(id Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserType:  string(id.UserType),
		PartnerID: id.PartnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*Identity, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return nil, errors.New("missing token")
	}
	if !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("malformed authorization header")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*Identity, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &Identity{
		UserID:    claims.Subject,
		UserType:  model.UserType(claims.UserType),
		PartnerID: claims.PartnerID,
	}, nil
}

type ctxKeyIdentity struct{}

func identityInto(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}

func identityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity{}).(*Identity)
	return id
}
