package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/pkg/response"
)

// parseRange reads the from/to query parameters (RFC 3339). Missing values
// default to [now, now + horizonDays). On a malformed value it writes a 400
// and returns false.
func parseRange(c *gin.Context, horizonDays int) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now
	to := now.AddDate(0, 0, horizonDays)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, 10001, "from must be RFC 3339")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
		to = parsed.AddDate(0, 0, horizonDays)
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, 10001, "to must be RFC 3339")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if !from.Before(to) {
		response.BadRequest(c, 10001, "from must be before to")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
