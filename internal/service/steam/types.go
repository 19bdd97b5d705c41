package steam

// Raw upstream payloads. Nested objects are pointers so a missing or null
// section can be told apart from an empty one.

type PlayerSummary struct {
	SteamID        string `json:"steamid"`
	PersonaName    string `json:"personaname"`
	ProfileURL     string `json:"profileurl"`
	Avatar         string `json:"avatar"`
	AvatarFull     string `json:"avatarfull"`
	LastLogoff     int64  `json:"lastlogoff"`
	RealName       string `json:"realname"`
	LocCountryCode string `json:"loccountrycode"`
}

type OwnedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	ImgIconURL      string `json:"img_icon_url"`
}

// AppDetails is the "data" object of the store appdetails endpoint.
type AppDetails struct {
	Type                   string                  `json:"type"`
	Name                   string                  `json:"name"`
	SteamAppID             int                     `json:"steam_appid"`
	IsFree                 bool                    `json:"is_free"`
	ShortDescription       string                  `json:"short_description"`
	DetailedDescription    string                  `json:"detailed_description"`
	HeaderImage            string                  `json:"header_image"`
	Developers             []string                `json:"developers"`
	Publishers             []string                `json:"publishers"`
	Genres                 []Genre                 `json:"genres"`
	Screenshots            []Screenshot            `json:"screenshots"`
	Platforms              Platforms               `json:"platforms"`
	PriceOverview          *PriceOverview          `json:"price_overview,omitempty"`
	SteamDeckCompatibility *SteamDeckCompatibility `json:"steam_deck_compatibility,omitempty"`
}

type Genre struct {
	Description string `json:"description"`
}

type Screenshot struct {
	ID            int    `json:"id"`
	PathThumbnail string `json:"path_thumbnail"`
	PathFull      string `json:"path_full"`
}

type Platforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

type PriceOverview struct {
	Currency        string `json:"currency"`
	Initial         int    `json:"initial"`
	Final           int    `json:"final"`
	DiscountPercent int    `json:"discount_percent"`
	FinalFormatted  string `json:"final_formatted"`
}

type SteamDeckCompatibility struct {
	Verified []string `json:"verified"`
}

type SchemaGame struct {
	GameName           string     `json:"gameName"`
	AvailableGameStats *GameStats `json:"availableGameStats,omitempty"`
}

type GameStats struct {
	Achievements []SchemaAchievement `json:"achievements"`
}

type SchemaAchievement struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
	Hidden      int    `json:"hidden"`
}

type PlayerStats struct {
	SteamID      string              `json:"steamID"`
	GameName     string              `json:"gameName"`
	Achievements []PlayerAchievement `json:"achievements"`
	Success      bool                `json:"success"`
	Error        string              `json:"error,omitempty"`
}

type PlayerAchievement struct {
	APIName    string `json:"apiname"`
	Achieved   int    `json:"achieved"`
	UnlockTime int64  `json:"unlocktime"`
}

// AchievementPayload bundles both achievement calls for one title. AppID is
// the id the calls were made for.
type AchievementPayload struct {
	AppID  int
	Schema *SchemaGame
	Player *PlayerStats
}

// response envelopes

type vanityResponse struct {
	Response struct {
		SteamID string `json:"steamid"`
		Success int    `json:"success"`
		Message string `json:"message"`
	} `json:"response"`
}

type summariesResponse struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedGame `json:"games"`
	} `json:"response"`
}

type appDetailsEntry struct {
	Success bool        `json:"success"`
	Data    *AppDetails `json:"data"`
}

type schemaResponse struct {
	Game *SchemaGame `json:"game"`
}

type playerStatsResponse struct {
	PlayerStats *PlayerStats `json:"playerstats"`
}

type friendListResponse struct {
	FriendsList *struct {
		Friends []struct {
			SteamID string `json:"steamid"`
		} `json:"friends"`
	} `json:"friendslist"`
}

type steamLevelResponse struct {
	Response struct {
		PlayerLevel *int `json:"player_level"`
	} `json:"response"`
}
