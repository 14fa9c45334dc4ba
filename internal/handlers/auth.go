package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/events"
	"github.com/chaussup/shop/internal/hash"
	"github.com/chaussup/shop/internal/logging"
	"github.com/chaussup/shop/internal/models"
	"github.com/chaussup/shop/internal/session"
)

// One message whatever went wrong, so a probe cannot tell a wrong password
// from an unknown username.
const loginErrorMessage = "Identifiants invalides"

// Compared against on the unknown-username branch so response timing does
// not reveal whether the username exists.
var dummyHash, _ = hash.HashPassword("not-a-real-password")

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *events.Producer
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]interface{}{})
}

func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		hash.CheckPassword(dummyHash, password)
		return h.loginFailed(c)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return h.loginFailed(c)
	}

	if err := h.Sessions.Issue(c, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
	}

	h.publish(c, user.ID, map[string]interface{}{
		"type":     "admin_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *AuthHandler) loginFailed(c echo.Context) error {
	return c.Render(http.StatusUnauthorized, "login.html", map[string]interface{}{
		"Error": loginErrorMessage,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := h.Sessions.Revoke(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not clear session")
	}

	if userID != 0 {
		h.publish(c, userID, map[string]interface{}{
			"type":   "admin_logged_out",
			"userID": userID,
		})
	}

	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) publish(c echo.Context, userID uint, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}
