package domain

// Platform is one of the three capability flags Steam reports per title.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMac     Platform = "mac"
	PlatformLinux   Platform = "linux"
)

func (p Platform) String() string {
	return string(p)
}

// Price is the store's final price. Cents is the nominal amount in the
// smallest currency unit.
type Price struct {
	Cents     int    `json:"cents"`
	Formatted string `json:"formatted"`
	Currency  string `json:"currency"`
}

// Creator is a studio or verifier name with its store search link.
type Creator struct {
	Name      string `json:"name"`
	SearchURL string `json:"search_url"`
}

// GameRecord is the canonical, merged view of one owned title.
type GameRecord struct {
	AppID           int        `json:"appid"`
	Name            string     `json:"name"`
	PlaytimeMinutes int        `json:"playtime_minutes"`
	PlayedHours     int        `json:"played_hours"`
	Platforms       []Platform `json:"platforms"`

	ShortDescription     string `json:"short_description"`
	DetailedDescription  string `json:"detailed_description"`
	RewrittenDescription string `json:"rewritten_description"`

	Price        *Price `json:"price,omitempty"`
	PriceLabel   string `json:"price_label"`
	PricePerHour string `json:"price_per_hour"`

	Developers []string  `json:"developers"`
	Publishers []string  `json:"publishers"`
	Genres     []string  `json:"genres"`
	Creators   []Creator `json:"creators"`

	HeaderImageURL string     `json:"header_image_url"`
	Header         AssetRef   `json:"header"`
	ScreenshotURLs []string   `json:"screenshot_urls"`
	Screenshots    []AssetRef `json:"screenshots"`

	Achievements []Achievement `json:"achievements"`
}

// Achievement merges the schema entry with the player's unlock state.
type Achievement struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IconURL     string   `json:"icon_url"`
	Icon        AssetRef `json:"icon"`
	Achieved    bool     `json:"achieved"`
}

// EarnedAchievements counts unlocked achievements.
func (g *GameRecord) EarnedAchievements() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, a := range g.Achievements {
		if a.Achieved {
			n++
		}
	}
	return n
}

// HasPlatform reports whether p is among the record's platforms.
func (g *GameRecord) HasPlatform(p Platform) bool {
	if g == nil {
		return false
	}
	for _, have := range g.Platforms {
		if have == p {
			return true
		}
	}
	return false
}
