// Package normalize merges the raw Steam payloads of one title into a
// domain.GameRecord.
package normalize

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/service/steam"
	"github.com/kapu/steam-profile-md/internal/util"
	"go.uber.org/zap"
)

// ErrMissingAppID is returned for library entries without an app id.
var ErrMissingAppID = stderrors.New("owned game has no app id")

const (
	unknownName         = "Unknown"
	noShortDescription  = "No description"
	noDetailDescription = "No detailed description"
	noPriceLabel        = "Free or unknown"
)

type Normalizer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize builds the record for game. details and ach may be nil; a
// payload whose app id differs from the library entry is dropped.
func (n *Normalizer) Normalize(profileID string, game steam.OwnedGame, details *steam.AppDetails, ach *steam.AchievementPayload) (*domain.GameRecord, error) {
	if game.AppID <= 0 {
		return nil, fmt.Errorf("%w (name %q)", ErrMissingAppID, game.Name)
	}

	if details != nil && details.SteamAppID != 0 && details.SteamAppID != game.AppID {
		n.logger.Warn("Store details belong to another app, ignoring",
			zap.Int("appid", game.AppID),
			zap.Int("store_appid", details.SteamAppID),
		)
		details = nil
	}
	if ach != nil && ach.AppID != game.AppID {
		n.logger.Warn("Achievement payload belongs to another app, ignoring",
			zap.String("steamid", profileID),
			zap.Int("appid", game.AppID),
			zap.Int("payload_appid", ach.AppID),
		)
		ach = nil
	}

	rec := &domain.GameRecord{
		AppID:               game.AppID,
		PlaytimeMinutes:     game.PlaytimeForever,
		PlayedHours:         game.PlaytimeForever / 60,
		ShortDescription:    noShortDescription,
		DetailedDescription: noDetailDescription,
		PriceLabel:          noPriceLabel,
	}

	var storeName string
	if details != nil {
		storeName = details.Name
		applyDetails(rec, details)
	}
	rec.Name = util.FirstNonEmpty(game.Name, storeName, unknownName)
	rec.PricePerHour = PricePerHour(rec.Price, rec.PlayedHours)

	if ach != nil {
		rec.Achievements = joinAchievements(ach.Schema, ach.Player)
	}
	if rec.Achievements == nil {
		rec.Achievements = []domain.Achievement{}
	}

	return rec, nil
}

func applyDetails(rec *domain.GameRecord, d *steam.AppDetails) {
	if strings.TrimSpace(d.ShortDescription) != "" {
		rec.ShortDescription = d.ShortDescription
	}
	if strings.TrimSpace(d.DetailedDescription) != "" {
		rec.DetailedDescription = d.DetailedDescription
	}

	if d.PriceOverview != nil {
		rec.Price = &domain.Price{
			Cents:     d.PriceOverview.Final,
			Formatted: d.PriceOverview.FinalFormatted,
			Currency:  d.PriceOverview.Currency,
		}
		rec.PriceLabel = util.FirstNonEmpty(d.PriceOverview.FinalFormatted, noPriceLabel)
	}

	rec.Platforms = platforms(d.Platforms)
	rec.Developers = nonEmpty(d.Developers)
	rec.Publishers = nonEmpty(d.Publishers)

	for _, g := range d.Genres {
		if g.Description != "" {
			rec.Genres = append(rec.Genres, g.Description)
		}
	}

	var verified []string
	if d.SteamDeckCompatibility != nil {
		verified = nonEmpty(d.SteamDeckCompatibility.Verified)
	}
	rec.Creators = creators(verified, rec.Developers)

	rec.HeaderImageURL = d.HeaderImage
	for _, s := range d.Screenshots {
		if s.PathFull != "" {
			rec.ScreenshotURLs = append(rec.ScreenshotURLs, s.PathFull)
		}
	}
}

func platforms(p steam.Platforms) []domain.Platform {
	var out []domain.Platform
	if p.Windows {
		out = append(out, domain.PlatformWindows)
	}
	if p.Mac {
		out = append(out, domain.PlatformMac)
	}
	if p.Linux {
		out = append(out, domain.PlatformLinux)
	}
	return out
}

// creators prefers the deck-verified list and falls back to developers.
func creators(verified, developers []string) []domain.Creator {
	names := verified
	if len(names) == 0 {
		names = developers
	}
	out := make([]domain.Creator, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Creator{
			Name:      name,
			SearchURL: constants.APIConfig.StoreSearchURL + "?developer=" + url.QueryEscape(name),
		})
	}
	return out
}

// PricePerHour formats cents spent per played hour, rounded half-up to
// two decimals. Returns the "-" marker when either side is zero.
func PricePerHour(price *domain.Price, hours int) string {
	if price == nil || price.Cents <= 0 || hours <= 0 {
		return constants.Glyphs.NoPerHour
	}
	hundredths := (price.Cents*2 + hours) / (2 * hours)
	return fmt.Sprintf("%d.%02d %s / h", hundredths/100, hundredths%100, currencySymbol(price.Currency))
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "EUR":
		return constants.Glyphs.CurrencyEU
	case "USD":
		return "$"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(code)
	}
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
