package controllers_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Roshan11032005/nutri-backend/controllers"
	"github.com/Roshan11032005/nutri-backend/models"
	"github.com/Roshan11032005/nutri-backend/routes"
	"github.com/Roshan11032005/nutri-backend/services"
	"github.com/Roshan11032005/nutri-backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type capturingMailer struct {
	mu       sync.Mutex
	lastCode string
}

func (m *capturingMailer) SendOTPEmail(_ context.Context, _, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCode = code
	return nil
}

func (m *capturingMailer) LastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCode
}

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	mr     *miniredis.Miniredis
	mailer *capturingMailer
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FoodLog{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := utils.NewTokenService(key)

	mailer := &capturingMailer{}
	otp := services.NewOTPService(rdb, mailer)
	auth := services.NewAuthService(db, rdb, tokens, otp)
	users := services.NewUserService(db)

	router := routes.SetupRouter(routes.Deps{
		Tokens:       tokens,
		Redis:        rdb,
		Auth:         controllers.NewAuthController(auth),
		OTP:          controllers.NewOTPController(auth),
		Registration: controllers.NewRegistrationController(auth),
		Food:         controllers.NewFoodController(nil),
		User:         controllers.NewUserController(users),
		Health:       controllers.NewHealthController(db),
	})

	return &apiFixture{router: router, db: db, mr: mr, mailer: mailer}
}

func (f *apiFixture) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Role:         models.RoleUser,
		Name:         "Seed User",
		Email:        email,
		MobileNumber: "0711111111",
		PasswordHash: hash,
		Verified:     true,
		Height:       180,
		Weight:       75,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *apiFixture) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestOTPLoginLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	user := f.seedUser(t, "a@b.com", "pw123")

	// Challenge: unauthenticated email submission yields the l1 token.
	w := f.do(http.MethodPost, "/api/auth/send_email", `{"email":"a@b.com"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	l1 := decode(t, w)["token"].(string)
	require.NotEmpty(t, l1)

	// submit_otp is gated on the l1 token.
	w = f.do(http.MethodPost, "/api/auth/submit_otp", `{"otp":"123456"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong code is rejected without consuming the real one.
	w = f.do(http.MethodPost, "/api/auth/submit_otp", `{"otp":"000000"}`, l1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired OTP")

	// Correct code elevates to the session tier.
	w = f.do(http.MethodPost, "/api/auth/submit_otp", `{"otp":"`+f.mailer.LastCode()+`"}`, l1)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	session := resp["sessionToken"].(string)
	refresh := resp["refreshToken"].(string)
	assert.Equal(t, fmt.Sprint(user.ID), resp["user_id"])

	// The session token opens l2-protected resources.
	w = f.do(http.MethodGet, "/api/user/profile", "", session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "a@b.com")

	// The l1 token does not.
	w = f.do(http.MethodGet, "/api/user/profile", "", l1)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout blacklists both tokens.
	w = f.do(http.MethodPost, "/api/auth/logout", `{"refreshToken":"`+refresh+`"}`, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Logout successful")

	// The same session token is now dead even though it still verifies.
	w = f.do(http.MethodGet, "/api/user/profile", "", session)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token is blacklisted")

	// So is the refresh token.
	w = f.do(http.MethodPost, "/api/auth/refresh_token", `{"refreshToken":"`+refresh+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Refresh token has been revoked")
}

func TestSendEmailUnknownUser(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/auth/send_email", `{"email":"nobody@b.com"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")

	w = f.do(http.MethodPost, "/api/auth/send_email", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email is required")
}

func TestLoginDoesNotRevealAccountExistence(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "a@b.com", "right")

	wrongPassword := f.do(http.MethodPost, "/api/auth/login", `{"identifier":"a@b.com","password":"wrong"}`, "")
	noSuchUser := f.do(http.MethodPost, "/api/auth/login", `{"identifier":"ghost@b.com","password":"wrong"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, noSuchUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), noSuchUser.Body.String())
}

func TestPasswordLoginAndRefreshRotation(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "a@b.com", "pw123")

	w := f.do(http.MethodPost, "/api/auth/login", `{"identifier":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode(t, w)
	firstRefresh := first["refreshToken"].(string)

	w = f.do(http.MethodPost, "/api/auth/refresh_token", `{"refreshToken":"`+firstRefresh+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode(t, w)
	assert.Contains(t, rotated["message"], "refreshed")
	assert.NotEqual(t, first["sessionToken"], rotated["sessionToken"])
	assert.NotEqual(t, firstRefresh, rotated["refreshToken"])

	// Rotation does not retire the presented refresh token.
	w = f.do(http.MethodPost, "/api/auth/refresh_token", `{"refreshToken":"`+firstRefresh+`"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupEndToEnd(t *testing.T) {
	f := newAPIFixture(t)

	payload := `{"name":"New User","email":"new@b.com","mobile_number":"0722222222","password":"pw123"}`
	w := f.do(http.MethodPost, "/api/auth/signup", payload, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	signupToken := decode(t, w)["token"].(string)

	// Verification requires the signup token.
	w = f.do(http.MethodPost, "/api/auth/verify_signup", `{"otp":"`+f.mailer.LastCode()+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/auth/verify_signup", `{"otp":"`+f.mailer.LastCode()+`"}`, signupToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Signup successful")

	// The verified account can authenticate immediately.
	w = f.do(http.MethodPost, "/api/auth/login", `{"identifier":"new@b.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "taken@b.com", "pw")

	payload := `{"name":"X","email":"taken@b.com","mobile_number":"0733333333","password":"pw"}`
	w := f.do(http.MethodPost, "/api/auth/signup", payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestProfileUpdateRoundTrip(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "a@b.com", "pw123")

	w := f.do(http.MethodPost, "/api/auth/login", `{"identifier":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	session := decode(t, w)["sessionToken"].(string)

	w = f.do(http.MethodPut, "/api/user/profile", `{"weight":82.5}`, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/user/profile", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.InDelta(t, 82.5, profile["weight"], 0.01)
	assert.Contains(t, profile, "bmi")
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "status")
}

func TestResponsesCarryExplicitContentLength(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/auth/send_email", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, fmt.Sprint(w.Body.Len()), w.Header().Get("Content-Length"))
}
