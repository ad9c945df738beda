package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SendJSON serializes payload once and writes it with an explicit
// Content-Length so clients can buffer deterministically (no chunked
// transfer encoding).
func SendJSON(c *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Writer.Header().Set("Content-Length", strconv.Itoa(len(body)))
	c.Writer.WriteHeader(status)
	c.Writer.Write(body)
}

// AbortJSON writes the payload like SendJSON and stops the handler chain.
func AbortJSON(c *gin.Context, status int, payload any) {
	SendJSON(c, status, payload)
	c.Abort()
}
