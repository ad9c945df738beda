package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Roshan11032005/nutri-backend/services"
	"github.com/Roshan11032005/nutri-backend/utils"
)

// Context keys set by the auth middlewares for downstream handlers.
const (
	CtxUsername = "username"
	CtxUserID   = "user_id"
	CtxToken    = "token"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// RequireLevel1 admits only l1 pre-auth tokens: a capability to attempt OTP
// submission, not proof of authentication.
func RequireLevel1(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Missing Level-1 token"})
			return
		}

		claims := tokens.VerifyJWT(token)
		if claims == nil || claims.Type != utils.TokenTypeL1 || claims.Username == "" {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Invalid or expired Level-1 token"})
			return
		}

		c.Set(CtxUsername, claims.Username)
		c.Next()
	}
}

// RequireSignup admits only signup-scoped pre-auth tokens.
func RequireSignup(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Missing signup token"})
			return
		}

		claims := tokens.VerifyJWT(token)
		if claims == nil || claims.Type != utils.TokenTypeSignup || claims.Username == "" {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Invalid or expired signup token"})
			return
		}

		c.Set(CtxUsername, claims.Username)
		c.Next()
	}
}

// RequireLevel2 is the revocation gate for session-tier requests: verify
// the token, require the l2 type and a user id, then consult the blacklist
// before trusting it. On success the decoded identity and the raw token are
// attached to the request context.
func RequireLevel2(tokens *utils.TokenService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		claims := tokens.VerifyJWT(token)
		if claims == nil || claims.Type != utils.TokenTypeL2 {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			return
		}

		// A token that predates user-id embedding is invalid under the
		// current schema, never silently downgraded.
		if claims.UserID == "" {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Token is missing user ID"})
			return
		}

		blacklisted, err := rdb.Exists(c.Request.Context(), services.BlacklistSessionKey(token)).Result()
		if err != nil {
			utils.AbortJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if blacklisted > 0 {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Token is blacklisted"})
			return
		}

		c.Set(CtxToken, token)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxUserID, claims.UserID)
		c.Next()
	}
}

// RequireRefresh validates the refresh token carried in the request body.
// Blacklist membership is checked before signature verification so a
// revoked token is rejected even while cryptographically valid.
func RequireRefresh(tokens *utils.TokenService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindBodyWithJSON(&body); err != nil || body.RefreshToken == "" {
			utils.AbortJSON(c, http.StatusBadRequest, gin.H{"error": "Refresh token is required"})
			return
		}

		blacklisted, err := rdb.Exists(c.Request.Context(), services.BlacklistRefreshKey(body.RefreshToken)).Result()
		if err != nil {
			utils.AbortJSON(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if blacklisted > 0 {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Refresh token has been revoked"})
			return
		}

		claims := tokens.VerifyJWT(body.RefreshToken)
		if claims == nil || claims.Type != utils.TokenTypeRefresh || claims.UserID == "" {
			utils.AbortJSON(c, http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}

		c.Set(CtxToken, body.RefreshToken)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxUserID, claims.UserID)
		c.Next()
	}
}
