package analysis

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"encore.dev/beta/auth"
	"encore.dev/beta/errs"
)

// AuthData is the verified identity attached to authenticated requests.
type AuthData struct {
	Subject string `json:"subject"`
}

// AuthHandler validates the API bearer token. Any holder of a valid token
// may call the API; issuance is an external collaborator's concern.
//
//encore:authhandler
func AuthHandler(ctx context.Context, token string) (auth.UID, *AuthData, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secrets.JWTSigningKey), nil
	})
	if err != nil || !parsed.Valid {
		return "", nil, &errs.Error{Code: errs.Unauthenticated, Message: "invalid bearer token"}
	}
	if claims.Subject == "" {
		return "", nil, &errs.Error{Code: errs.Unauthenticated, Message: "token missing subject"}
	}
	return auth.UID(claims.Subject), &AuthData{Subject: claims.Subject}, nil
}
