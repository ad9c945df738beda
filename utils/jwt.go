package utils

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// The three token tiers, plus the pre-registration signup token.
const (
	TokenTypeL1      = "l1"
	TokenTypeL2      = "l2"
	TokenTypeRefresh = "refresh"
	TokenTypeSignup  = "signup"
)

const (
	Level1TokenTTL  = 50 * time.Minute
	SessionTokenTTL = 2 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
	SignupTokenTTL  = 10 * time.Minute
)

type TokenClaims struct {
	Username string `json:"username"`
	UserID   string `json:"user_id,omitempty"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the three JWT tiers with a single RSA
// keypair. The private key never leaves this struct; verifying callers only
// need the public half, which keeps the door open for splitting issuance
// and verification into separate processes later.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewTokenService(key *rsa.PrivateKey) *TokenService {
	return &TokenService{privateKey: key, publicKey: &key.PublicKey}
}

// SignJWT issues an RS256 token for the given identity and tier. The jti is
// always fresh so two tokens for the same claims in the same second still
// differ by signature.
func (s *TokenService) SignJWT(username, userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Username: username,
		UserID:   userID,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}

// VerifyJWT returns the decoded claims, or nil on any failure. Malformed,
// expired and badly signed tokens are indistinguishable to callers.
func (s *TokenService) VerifyJWT(tokenString string) *TokenClaims {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.publicKey, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}
