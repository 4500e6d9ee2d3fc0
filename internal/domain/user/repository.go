package user

import "context"

// PreferenceRepository reads and writes user display preferences.
// Get returns a zero-value Preference when the user never saved one.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*Preference, error)
	Upsert(ctx context.Context, p *Preference) error
}
