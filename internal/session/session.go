package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/models"
)

const CookieName = "session"

const DefaultTTL = 12 * time.Hour

// Manager issues and validates admin sessions. The cookie carries a signed
// JWT naming a server-side session row, so logout revokes the session even
// if the cookie itself survives in the browser.
type Manager struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
}

func (m *Manager) ttl() time.Duration {
	if m.TTL > 0 {
		return m.TTL
	}
	return DefaultTTL
}

func CreateCookie(name, value string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) Issue(c echo.Context, userID uint) error {
	sid := uuid.NewString()
	exp := time.Now().Add(m.ttl())

	row := models.Session{
		Token:     sid,
		UserID:    userID,
		ExpiresAt: exp,
	}
	if err := m.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("could not store session: %w", err)
	}

	claims := jwt.MapClaims{
		"sub": userID,
		"sid": sid,
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return fmt.Errorf("could not sign session token: %w", err)
	}

	c.SetCookie(CreateCookie(CookieName, signed, exp))
	return nil
}

// Validate returns the authenticated user's id, or an error for any
// anonymous request: missing/garbled cookie, bad signature, expired or
// revoked session.
func (m *Manager) Validate(c echo.Context) (uint, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return 0, err
	}

	claims, err := m.parse(cookie.Value)
	if err != nil {
		return 0, err
	}

	sid, ok := claims["sid"].(string)
	if !ok {
		return 0, errors.New("invalid session claims")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok {
		return 0, errors.New("invalid subject claim")
	}

	var stored models.Session
	if err := m.DB.Where("token = ?", sid).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("session not found")
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	if stored.Revoked {
		return 0, errors.New("session revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return 0, errors.New("session expired")
	}

	return uint(subRaw), nil
}

// Revoke clears the current session. An anonymous or garbled cookie is not
// an error: the cookie is expired either way.
func (m *Manager) Revoke(c echo.Context) (uint, error) {
	defer c.SetCookie(CreateCookie(CookieName, "", time.Now().Add(-1*time.Hour)))

	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return 0, nil
	}

	claims, err := m.parse(cookie.Value)
	if err != nil {
		return 0, nil
	}

	sid, _ := claims["sid"].(string)
	subRaw, _ := claims["sub"].(float64)

	result := m.DB.Model(&models.Session{}).
		Where("token = ?", sid).
		Update("revoked", true)
	if result.Error != nil {
		return 0, fmt.Errorf("db error: %w", result.Error)
	}

	return uint(subRaw), nil
}

func (m *Manager) parse(raw string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return m.Secret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}

	return claims, nil
}
