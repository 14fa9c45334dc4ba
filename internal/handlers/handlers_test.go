package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/hash"
	"github.com/chaussup/shop/internal/models"
	"github.com/chaussup/shop/internal/session"
	"github.com/chaussup/shop/internal/web"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.Manager
	Auth     *AuthHandler
	Product  *ProductHandler
	Cart     *CartHandler
	Catalog  *CatalogHandler
}

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Session{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)

	e := echo.New()
	e.Renderer = web.NewRenderer()

	sessions := &session.Manager{DB: db, Secret: []byte("test-secret")}

	return &testEnv{
		T:        t,
		E:        e,
		DB:       db,
		Sessions: sessions,
		Auth:     &AuthHandler{DB: db, Sessions: sessions},
		Product:  &ProductHandler{DB: db},
		Cart:     &CartHandler{DB: db},
		Catalog:  &CatalogHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var body bytes.Buffer
	if payload != nil {
		require.NoError(env.T, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) doFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) createAdmin(username, password string) models.User {
	env.T.Helper()

	hashed, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{Username: username, PasswordHash: hashed}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

// loginAdmin runs the full login flow and returns the session cookie.
func (env *testEnv) loginAdmin(username, password string) *http.Cookie {
	env.T.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	rec, c := env.doFormRequest(http.MethodPost, "/admin/login", form)
	require.NoError(env.T, env.Auth.Login(c))
	require.Equal(env.T, http.StatusSeeOther, rec.Code)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	env.T.Fatal("no session cookie in login response")
	return nil
}
