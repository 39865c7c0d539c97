package handler

import (
	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

// MustGetActor extracts the authenticated {user_id, role} pair injected by
// the JWT middleware. On failure it writes a 401 and returns false; the
// caller should return immediately then.
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := mustGetString(c, "user_id")
	if !ok {
		return service.Actor{}, false
	}
	role, ok := mustGetString(c, "role")
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: role}, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}
