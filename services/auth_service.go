package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Roshan11032005/nutri-backend/models"
	"github.com/Roshan11032005/nutri-backend/utils"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidOTP          = errors.New("invalid or expired OTP")
	ErrSessionExpired      = errors.New("OTP session data expired or missing")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrDuplicateUser       = errors.New("email or mobile number already registered")
	ErrSignupExpired       = errors.New("signup data expired")
)

const (
	otpSessionTTL = 10 * time.Minute
	signupTTL     = 10 * time.Minute

	// Fallback blacklist TTLs when a token cannot be decoded at logout.
	// Over-blacklisting with a conservative window beats failing to revoke.
	defaultSessionBlacklistTTL = utils.SessionTokenTTL
	defaultRefreshBlacklistTTL = utils.RefreshTokenTTL
)

func BlacklistSessionKey(token string) string { return "blacklist:session:" + token }
func BlacklistRefreshKey(token string) string { return "blacklist:refresh:" + token }

func otpSessionKey(identifier string) string { return "otp_session:" + identifier }
func signupKey(identifier string) string     { return "signup:" + identifier }

// otpSessionData bridges OTP verification to token issuance so the session
// token can embed the durable user id without a second credential lookup.
type otpSessionData struct {
	UserID string `json:"userId"`
}

// TokenPair is the result of a successful elevation, login or refresh.
type TokenPair struct {
	SessionToken string
	RefreshToken string
	UserID       string
}

// SignupInput is the staged registration payload, held in Redis until the
// email is verified.
type SignupInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// AuthService drives the authentication state machine:
// anonymous -> identified (l1) -> authenticated (l2) -> refreshed -> revoked.
// All cross-request state lives in the credential store and Redis.
type AuthService struct {
	db     *gorm.DB
	redis  *redis.Client
	tokens *utils.TokenService
	otp    *OTPService
}

func NewAuthService(db *gorm.DB, rdb *redis.Client, tokens *utils.TokenService, otp *OTPService) *AuthService {
	return &AuthService{db: db, redis: rdb, tokens: tokens, otp: otp}
}

// NormalizeEmail is applied to every identifier before lookup; email
// comparison is case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) findUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return &user, nil
}

// Challenge starts the OTP login flow: look the user up, issue a login OTP,
// store the email -> userId linkage, and mint the Level-1 token that is the
// client's only capability to attempt OTP submission.
func (s *AuthService) Challenge(ctx context.Context, email string) (string, error) {
	user, err := s.findUserByEmail(email)
	if err != nil {
		return "", err
	}
	identifier := NormalizeEmail(user.Email)

	if _, err := s.otp.Issue(ctx, identifier, OTPPurposeLogin); err != nil {
		return "", err
	}

	linkage, err := json.Marshal(otpSessionData{UserID: strconv.FormatUint(uint64(user.ID), 10)})
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, otpSessionKey(identifier), linkage, otpSessionTTL).Err(); err != nil {
		return "", fmt.Errorf("otp session store failed: %w", err)
	}

	token, err := s.tokens.SignJWT(identifier, "", utils.TokenTypeL1, utils.Level1TokenTTL)
	if err != nil {
		return "", fmt.Errorf("token signing failed: %w", err)
	}

	slog.Info("challenge issued", "email", identifier)
	return token, nil
}

// Elevate exchanges a valid OTP (submitted under a Level-1 token) for the
// session/refresh pair. The OTP is consumed before the linkage is read; the
// linkage itself is read-once.
func (s *AuthService) Elevate(ctx context.Context, identifier, code string) (*TokenPair, error) {
	ok, err := s.otp.Verify(ctx, identifier, OTPPurposeLogin, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	raw, err := s.redis.GetDel(ctx, otpSessionKey(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("otp session read failed: %w", err)
	}

	var linkage otpSessionData
	if err := json.Unmarshal([]byte(raw), &linkage); err != nil {
		return nil, ErrSessionExpired
	}

	pair, err := s.issuePair(identifier, linkage.UserID)
	if err != nil {
		return nil, err
	}
	slog.Info("OTP verified", "email", identifier, "userId", linkage.UserID)
	return pair, nil
}

// Login is the direct password path. User-not-found and wrong-password are
// deliberately indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	user, err := s.findUserByEmail(identifier)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(NormalizeEmail(user.Email), strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		return nil, err
	}
	slog.Info("user logged in", "email", user.Email, "userId", pair.UserID)
	return pair, nil
}

// Refresh mints a brand-new session/refresh pair for an already validated
// refresh token. The old refresh token stays valid until natural expiry or
// explicit revocation, so multiple devices can refresh independently.
func (s *AuthService) Refresh(username, userID string) (*TokenPair, error) {
	return s.issuePair(username, userID)
}

// Revoke blacklists the session token and its paired refresh token with
// TTLs equal to their remaining lifetimes. A token that no longer decodes
// gets the full default window; failing to blacklist is worse than
// over-blacklisting.
func (s *AuthService) Revoke(ctx context.Context, sessionToken, refreshToken string) error {
	sessionTTL := s.remainingTTL(sessionToken, defaultSessionBlacklistTTL)
	refreshTTL := s.remainingTTL(refreshToken, defaultRefreshBlacklistTTL)

	if err := s.redis.Set(ctx, BlacklistSessionKey(sessionToken), "1", sessionTTL).Err(); err != nil {
		return fmt.Errorf("session blacklist failed: %w", err)
	}
	if err := s.redis.Set(ctx, BlacklistRefreshKey(refreshToken), "1", refreshTTL).Err(); err != nil {
		return fmt.Errorf("refresh blacklist failed: %w", err)
	}
	return nil
}

func (s *AuthService) remainingTTL(token string, fallback time.Duration) time.Duration {
	claims := s.tokens.VerifyJWT(token)
	if claims == nil || claims.ExpiresAt == nil {
		slog.Warn("token undecodable at revocation, using default TTL")
		return fallback
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < time.Second {
		remaining = time.Second
	}
	return remaining
}

func (s *AuthService) issuePair(username, userID string) (*TokenPair, error) {
	sessionToken, err := s.tokens.SignJWT(username, userID, utils.TokenTypeL2, utils.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token signing failed: %w", err)
	}
	refreshToken, err := s.tokens.SignJWT(username, userID, utils.TokenTypeRefresh, utils.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token signing failed: %w", err)
	}
	return &TokenPair{SessionToken: sessionToken, RefreshToken: refreshToken, UserID: userID}, nil
}

// StageSignup holds the registration payload in Redis, issues a signup OTP,
// and returns a signup-scoped pre-auth token. The account is not created
// until the email is verified.
func (s *AuthService) StageSignup(ctx context.Context, input SignupInput) (string, error) {
	input.Email = NormalizeEmail(input.Email)

	var count int64
	err := s.db.Model(&models.User{}).
		Where("email = ? OR mobile_number = ?", input.Email, input.MobileNumber).
		Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("duplicate check failed: %w", err)
	}
	if count > 0 {
		return "", ErrDuplicateUser
	}

	staged, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, signupKey(input.Email), staged, signupTTL).Err(); err != nil {
		return "", fmt.Errorf("signup stage failed: %w", err)
	}

	if _, err := s.otp.Issue(ctx, input.Email, OTPPurposeSignup); err != nil {
		return "", err
	}

	return s.tokens.SignJWT(input.Email, "", utils.TokenTypeSignup, utils.SignupTokenTTL)
}

// CompleteSignup consumes the signup OTP, hashes the staged password and
// creates the verified user record.
func (s *AuthService) CompleteSignup(ctx context.Context, identifier, code string) (*models.User, error) {
	ok, err := s.otp.Verify(ctx, identifier, OTPPurposeSignup, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	raw, err := s.redis.GetDel(ctx, signupKey(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSignupExpired
	}
	if err != nil {
		return nil, fmt.Errorf("signup read failed: %w", err)
	}

	var input SignupInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, ErrSignupExpired
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %w", err)
	}

	user := models.User{
		Role:         models.RoleUser,
		Name:         input.Name,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		PasswordHash: hash,
		Verified:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user creation failed: %w", err)
	}

	slog.Info("signup completed", "email", user.Email, "userId", user.ID)
	return &user, nil
}
