package models

import "time"

// PasswordEntry is one credential from a user's vault. It is read-only input.
type PasswordEntry struct {
	ID          string    `json:"id,omitempty" yaml:"id"`
	Site        string    `json:"site" yaml:"site"`
	Username    string    `json:"username" yaml:"username"`
	Password    string    `json:"password" yaml:"password"`
	LastUpdated time.Time `json:"last_updated,omitempty" yaml:"last_updated"`
	Category    string    `json:"category,omitempty" yaml:"category"`
}

// EntryID returns the entry ID, falling back to "site_username".
func (e PasswordEntry) EntryID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Site + "_" + e.Username
}

// BreachStatus is the result of a breach lookup for one password.
// Checked is false when the lookup failed or was disabled; such a
// status is unknown and never counts as breached.
type BreachStatus struct {
	Checked  bool   `json:"checked"`
	Breached bool   `json:"breached"`
	Count    int    `json:"count"`
	Source   string `json:"source,omitempty"`
}

// IsBreached reports whether the password was confirmed in a breach corpus.
func (b BreachStatus) IsBreached() bool {
	return b.Checked && b.Breached
}

// PatternFlags records weak structural patterns found in a password.
type PatternFlags struct {
	Sequential bool `json:"sequential"`
	Repeated   bool `json:"repeated"`
	Keyboard   bool `json:"keyboard"`
	DateLike   bool `json:"date_like"`
}

// StrengthAnalysis is the scored view of a password. It never holds the password.
type StrengthAnalysis struct {
	Length       int          `json:"length"`
	HasUppercase bool         `json:"has_uppercase"`
	HasLowercase bool         `json:"has_lowercase"`
	HasNumbers   bool         `json:"has_numbers"`
	HasSymbols   bool         `json:"has_symbols"`
	IsCommon     bool         `json:"is_common"`
	Patterns     PatternFlags `json:"patterns"`
	Entropy      float64      `json:"entropy"`
	Score        int          `json:"score"`
	Label        string       `json:"label"`
	CrackTime    string       `json:"crack_time"`
}
