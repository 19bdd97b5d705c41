package domain

import "fmt"

// AssetKind selects the directory an asset is materialized into.
type AssetKind string

const (
	AssetAvatar      AssetKind = "avatar"
	AssetCover       AssetKind = "cover"
	AssetScreenshot  AssetKind = "screenshot"
	AssetAchievement AssetKind = "achievement"
	AssetDescription AssetKind = "description"
)

func (k AssetKind) String() string {
	return string(k)
}

func (k AssetKind) IsValid() bool {
	switch k {
	case AssetAvatar, AssetCover, AssetScreenshot, AssetAchievement, AssetDescription:
		return true
	default:
		return false
	}
}

// AssetKey is the logical identity of an asset within a run. Two references
// with the same key share one materialized copy regardless of their URLs.
type AssetKey struct {
	Kind  AssetKind
	Owner string // app id, or steam id for the avatar
	Name  string // role, ordinal or original filename
}

func (k AssetKey) String() string {
	if k.Name == "" {
		return fmt.Sprintf("%s/%s", k.Kind, k.Owner)
	}
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.Owner, k.Name)
}

// AssetRef is what the document links to: a local path when the asset was
// materialized, otherwise the original remote URL.
type AssetRef struct {
	Ref       string `json:"ref"`
	Local     bool   `json:"local"`
	RemoteURL string `json:"remote_url"`
}

// IsZero reports whether there is nothing to link to.
func (r AssetRef) IsZero() bool {
	return r.Ref == ""
}

// RemoteRef wraps an upstream URL without materializing it.
func RemoteRef(url string) AssetRef {
	return AssetRef{Ref: url, RemoteURL: url}
}

func CoverKey(appID int) AssetKey {
	return AssetKey{Kind: AssetCover, Owner: fmt.Sprint(appID), Name: "header"}
}

func AvatarKey(steamID string) AssetKey {
	return AssetKey{Kind: AssetAvatar, Owner: steamID}
}

func ScreenshotKey(appID, ordinal int) AssetKey {
	return AssetKey{Kind: AssetScreenshot, Owner: fmt.Sprint(appID), Name: fmt.Sprint(ordinal)}
}

func AchievementKey(appID int, name string) AssetKey {
	return AssetKey{Kind: AssetAchievement, Owner: fmt.Sprint(appID), Name: name}
}

func DescriptionKey(appID int, filename string) AssetKey {
	return AssetKey{Kind: AssetDescription, Owner: fmt.Sprint(appID), Name: filename}
}
