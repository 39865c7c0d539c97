package service

import "nightwatch/backend/internal/model"

// Actor carries the caller's identity and privilege into the service layer.
// It is supplied explicitly by the transport (auth middleware) so services
// stay pure functions of their inputs.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor holds elevated privilege.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }
