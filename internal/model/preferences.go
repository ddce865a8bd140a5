package model

// UserPreferences holds per-user notification switches.
// Columns have no database default: gorm omits zero-valued fields that have
// one on insert, turning an explicit false into true.
type UserPreferences struct {
	UserID                uint  `json:"-" gorm:"primaryKey;autoIncrement:false"`
	EnableTaskReminders   bool  `json:"enableTaskReminders" gorm:"not null"`
	EnableParameterAlerts bool  `json:"enableParameterAlerts" gorm:"not null"`
	User                  *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// DefaultPreferences returns the preferences a new account starts with.
func DefaultPreferences(userID uint) *UserPreferences {
	return &UserPreferences{
		UserID:                userID,
		EnableTaskReminders:   true,
		EnableParameterAlerts: true,
	}
}

// PreferencesUpdate is a partial update; nil fields keep their current value.
type PreferencesUpdate struct {
	EnableTaskReminders   *bool `json:"enableTaskReminders"`
	EnableParameterAlerts *bool `json:"enableParameterAlerts"`
}

// Apply merges u into p.
func (u PreferencesUpdate) Apply(p *UserPreferences) {
	if u.EnableTaskReminders != nil {
		p.EnableTaskReminders = *u.EnableTaskReminders
	}
	if u.EnableParameterAlerts != nil {
		p.EnableParameterAlerts = *u.EnableParameterAlerts
	}
}
