package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when access token can not be trusted.
var ErrInvalidToken = errors.New("invalid token")

// Claims are access token claims issued by auth provider.
type Claims struct {
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`

	jwt.RegisteredClaims
}

// UserMetadata ...
type UserMetadata struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// ParseToken validates HS256 access token and returns session it describes.
func ParseToken(secret []byte, token string) (*Session, error) {
	var c Claims

	if _, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return &Session{
		UserID:    c.Subject,
		Email:     c.Email,
		Name:      c.UserMetadata.Name,
		AvatarURL: c.UserMetadata.AvatarURL,
	}, nil
}
