package constants

import "time"

var APIConfig = struct {
	SteamAPIBaseURL   string
	SteamStoreBaseURL string
	CommunityBaseURL  string
	StoreSearchURL    string
	Timeout           time.Duration
	MaxBodyBytes      int64
	UserAgent         string
}{
	SteamAPIBaseURL:   "https://api.steampowered.com",
	SteamStoreBaseURL: "https://store.steampowered.com",
	CommunityBaseURL:  "https://steamcommunity.com",
	StoreSearchURL:    "https://store.steampowered.com/search/",
	Timeout:           15 * time.Second,
	MaxBodyBytes:      8 << 20,
	UserAgent:         "steam-profile-md/1.0",
}

var AssetConfig = struct {
	FetchTimeout    time.Duration
	MaxImageBytes   int64
	DefaultRoot     string
	PlaceholderIcon string
	BreakerFailures int
	BreakerCooldown time.Duration
}{
	FetchTimeout:    10 * time.Second,
	MaxImageBytes:   20 << 20,
	DefaultRoot:     "./generated/steamMD/",
	PlaceholderIcon: "https://community.cloudflare.steamstatic.com/public/images/skin_1/icon_question.gif",
	BreakerFailures: 5,
	BreakerCooldown: 30 * time.Second,
}

var PacingConfig = struct {
	TitleDelay time.Duration
}{
	TitleDelay: 300 * time.Millisecond, // between per-title fetch batches
}

var CacheTTL = struct {
	AppDetails time.Duration
	Schema     time.Duration
}{
	AppDetails: 60 * time.Minute,
	Schema:     24 * time.Hour,
}

// Glyphs used in the rendered document.
var Glyphs = struct {
	Windows    string
	Mac        string
	Linux      string
	Earned     string
	Unearned   string
	Contents   string
	NoPerHour  string
	CurrencyEU string
}{
	Windows:    "🪟",
	Mac:        "🍏",
	Linux:      "🐧",
	Earned:     "🟩",
	Unearned:   "🟥",
	Contents:   "📜",
	NoPerHour:  "-",
	CurrencyEU: "€",
}

var OutputConfig = struct {
	DefaultDir   string
	FilePrefix   string
	MarkdownExt  string
	HTMLExt      string
	ThumbWidth   int
	HeaderWidth  string
	IconWidth    int
	ShotWidth    string
	NameLogRunes int
}{
	DefaultDir:   "./",
	FilePrefix:   "steam_profile_",
	MarkdownExt:  ".md",
	HTMLExt:      ".html",
	ThumbWidth:   80,
	HeaderWidth:  "400px",
	IconWidth:    32,
	ShotWidth:    "400px",
	NameLogRunes: 48,
}
