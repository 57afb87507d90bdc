package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qualikit/qualikit/backend/go-services/internal/config"
	"github.com/qualikit/qualikit/backend/go-services/internal/models"
)

// GenerateAccessToken creates a signed JWT access token for the user.
// The documentAdmin claim lets downstream services honor the capability
// without a user lookup; this service still consults its own user record.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":           u.Sub,
		"name":          u.Name,
		"email":         u.Email,
		"documentAdmin": u.DocumentAdmin,
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
