package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and verifies the signed tokens that prove a user's
// identity to the API. Tokens are self-contained (user id + issued-at +
// expiry, HS256-signed) and carry no other state; whether a token is still
// accepted additionally depends on its auth_tokens row, which the auth
// middleware checks separately.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// Claims carries the user identifier inside the token.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Issue encodes the user id with issuance time and expiry and signs it.
func (m *JWTManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Validate reports whether the token is acceptable. It fails closed: any
// decode or signature failure yields false regardless of strictness. With
// strict true the embedded expiry must also hold; with strict false an
// expired but genuinely-signed token still passes.
func (m *JWTManager) Validate(tokenStr string, strict bool) bool {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !strict {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	tkn, err := jwt.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc, opts...)
	return err == nil && tkn.Valid
}

// ExtractUserID returns the user id embedded in the token, or ok=false when
// the token cannot be decoded or its signature does not verify. It never
// panics on malformed input; callers treat a false result as "no identity".
func (m *JWTManager) ExtractUserID(tokenStr string) (string, bool) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

func (m *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return m.secret, nil
}
