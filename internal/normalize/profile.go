package normalize

import (
	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/service/steam"
	"github.com/kapu/steam-profile-md/internal/util"
)

// Profile converts a player summary. The profile URL is always the
// numeric /profiles/ form so it stays valid when the vanity name changes.
func Profile(s *steam.PlayerSummary) *domain.Profile {
	if s == nil {
		return nil
	}
	return &domain.Profile{
		SteamID:     s.SteamID,
		PersonaName: util.FirstNonEmpty(s.PersonaName, unknownName),
		AvatarURL:   util.FirstNonEmpty(s.AvatarFull, s.Avatar),
		LastLogoff:  util.FromUnix(s.LastLogoff),
		CountryCode: s.LocCountryCode,
		Bio:         s.RealName,
		ProfileURL:  constants.APIConfig.CommunityBaseURL + "/profiles/" + s.SteamID,
	}
}
