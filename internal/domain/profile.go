package domain

import "time"

// Profile is the player summary read once at the start of an export.
type Profile struct {
	SteamID     string     `json:"steamid"`
	PersonaName string     `json:"personaname"`
	AvatarURL   string     `json:"avatar_url"`
	LastLogoff  *time.Time `json:"last_logoff,omitempty"`
	CountryCode string     `json:"country_code,omitempty"`
	Bio         string     `json:"bio,omitempty"` // Steam "realname"
	ProfileURL  string     `json:"profile_url"`
}

// ProfileStats holds aggregate numbers that are fetched or computed
// separately from the summary. Nil pointers render as "Unknown".
type ProfileStats struct {
	Level            *int `json:"level,omitempty"`
	Friends          *int `json:"friends,omitempty"`
	TotalPlayedHours int  `json:"total_played_hours"`
}

// Document is everything the renderer needs.
type Document struct {
	Profile *Profile
	Stats   ProfileStats
	Avatar  AssetRef
	Records []*GameRecord
}

// TotalPlaytimeHours sums the minutes of every record and floors to hours.
func TotalPlaytimeHours(records []*GameRecord) int {
	total := 0
	for _, r := range records {
		if r != nil {
			total += r.PlaytimeMinutes
		}
	}
	return total / 60
}
