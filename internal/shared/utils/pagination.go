package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseLimit reads the "limit" query value. Missing or invalid values fall
// back to defaultLimit; larger values are capped at maxLimit.
func ParseLimit(c *gin.Context, defaultLimit, maxLimit int) int {
	limit := parseQueryInt(c, "limit", defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			return n
		}
	}
	return defaultVal
}
