package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthenticator validates bearer tokens minted by the external issuer.
// Only HMAC-signed tokens are accepted; the subject claim carries the user
// id, "sid" the session id.
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	ident := &Identity{UserID: userID}
	if sid, ok := claims["sid"].(string); ok {
		ident.SessionID = sid
	}
	return ident, nil
}

// IssueToken mints an HMAC token for the given identity. Token issuance
// belongs to the external auth service; this helper exists for local
// development and tests.
func IssueToken(secret string, ident Identity) (string, error) {
	claims := jwt.MapClaims{"sub": ident.UserID.String()}
	if ident.SessionID != "" {
		claims["sid"] = ident.SessionID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
