package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OTPPurposeLogin  = "login"
	OTPPurposeSignup = "signup"

	otpTTL = 10 * time.Minute
)

// Mailer delivers one-time codes out of band. The SES implementation lives
// in utils; tests plug in a recorder.
type Mailer interface {
	SendOTPEmail(ctx context.Context, to, purpose, code string) error
}

// consumeOTPScript compares the submitted code against the stored one and
// deletes the key in the same step, so two concurrent submissions of the
// same code cannot both succeed.
var consumeOTPScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v and v == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// OTPService issues and verifies 6-digit one-time codes kept in Redis under
// otp:<purpose>:<identifier> with a 10-minute TTL. Issuing a new code for
// the same key overwrites the old one and resets the TTL.
type OTPService struct {
	redis  *redis.Client
	mailer Mailer
}

func NewOTPService(rdb *redis.Client, mailer Mailer) *OTPService {
	return &OTPService{redis: rdb, mailer: mailer}
}

func otpKey(purpose, identifier string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, identifier)
}

// Generate returns a uniformly random code in [100000, 999999].
func (s *OTPService) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp generation failed: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue generates a code, stores it, and emails it to the identifier.
// The code is returned for logging and tests.
func (s *OTPService) Issue(ctx context.Context, identifier, purpose string) (string, error) {
	code, err := s.Generate()
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, otpKey(purpose, identifier), code, otpTTL).Err(); err != nil {
		return "", fmt.Errorf("otp store failed: %w", err)
	}
	slog.Info("OTP stored", "purpose", purpose, "identifier", identifier)

	if err := s.mailer.SendOTPEmail(ctx, identifier, purpose, code); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the stored code if it matches. One-time use: a correct
// code verifies exactly once; a missing or expired key verifies false.
func (s *OTPService) Verify(ctx context.Context, identifier, purpose, submitted string) (bool, error) {
	if submitted == "" {
		return false, nil
	}
	ok, err := consumeOTPScript.Run(ctx, s.redis, []string{otpKey(purpose, identifier)}, submitted).Int()
	if err != nil {
		return false, fmt.Errorf("otp verify failed: %w", err)
	}
	return ok == 1, nil
}
