// Package user carries the caller identity resolved by the gatekeeper
// service and per-user display preferences.
package user

import "time"

// Principal is the authenticated caller attached to each request.
type Principal struct {
	UserID      string
	Username    string
	IsAdmin     bool
	IsSupporter bool
}

// Preference stores per-user display settings.
type Preference struct {
	UserID              string
	HideFromLeaderboard bool
	UpdatedAt           time.Time
}
