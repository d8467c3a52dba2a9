package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const (
	// SessionLifetime is how long a session token stays valid.
	SessionLifetime = 30 * 24 * time.Hour
	// SessionRenewAfter is the age past which the auth middleware
	// reissues the session cookie.
	SessionRenewAfter = 24 * time.Hour
)

var ErrSessionInvalid = errors.New("session token is invalid or expired")

// SessionClaims is the identity carried by a signed session token.
// Privileged handlers derive the acting user from these claims only,
// never from client-supplied IDs.
type SessionClaims struct {
	UserID   string
	Role     string
	IssuedAt time.Time
}

// MakeSessionToken signs an HS256 session token for the given user
func MakeSessionToken(userID, role string) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"type":    "auth",
		"iat":     now.Unix(),
		"exp":     now.Add(SessionLifetime).Unix(),
	})

	return t.SignedString([]byte(viper.GetString("jwt.secret")))
}

// ParseSessionToken validates a session token and extracts its claims.
// Expired tokens, unexpected signing methods and malformed claims all
// map to ErrSessionInvalid.
func ParseSessionToken(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(viper.GetString("jwt.secret")), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrSessionInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrSessionInvalid
	}

	role, _ := claims["role"].(string)

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrSessionInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(exp) {
		return nil, ErrSessionInvalid
	}

	return &SessionClaims{
		UserID:   userID,
		Role:     role,
		IssuedAt: time.Unix(int64(iat), 0),
	}, nil
}
