// pkg/prefs/prefs.go
package prefs

import "encoding/json"

// Preferences is the per-principal settings document. Fields added later
// keep their defaults for principals whose stored file predates them.
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications string `json:"notifications"`
}

func Defaults() Preferences {
	return Preferences{Theme: "light", Notifications: "on"}
}

// overlay decodes a stored document with optional fields so a partial or
// older file merges over the defaults instead of zeroing them.
type overlay struct {
	Theme         *string `json:"theme"`
	Notifications *string `json:"notifications"`
}

func merge(base Preferences, b []byte) (Preferences, error) {
	var o overlay
	if err := json.Unmarshal(b, &o); err != nil {
		return base, err
	}
	if o.Theme != nil {
		base.Theme = *o.Theme
	}
	if o.Notifications != nil {
		base.Notifications = *o.Notifications
	}
	return base, nil
}
