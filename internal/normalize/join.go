package normalize

import (
	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/service/steam"
	"github.com/kapu/steam-profile-md/internal/util"
)

// joinAchievements merges the schema into the player's list by api name,
// keeping the player's order. A schema miss keeps the raw api name with no
// description. Missing structures on either side yield an empty list.
func joinAchievements(schema *steam.SchemaGame, player *steam.PlayerStats) []domain.Achievement {
	if schema == nil || schema.AvailableGameStats == nil || player == nil {
		return []domain.Achievement{}
	}

	byName := make(map[string]steam.SchemaAchievement, len(schema.AvailableGameStats.Achievements))
	for _, a := range schema.AvailableGameStats.Achievements {
		byName[a.Name] = a
	}

	out := make([]domain.Achievement, 0, len(player.Achievements))
	for _, pa := range player.Achievements {
		achieved := pa.Achieved == 1
		entry, ok := byName[pa.APIName]
		if !ok {
			out = append(out, domain.Achievement{
				Name:     pa.APIName,
				IconURL:  constants.AssetConfig.PlaceholderIcon,
				Achieved: achieved,
			})
			continue
		}

		out = append(out, domain.Achievement{
			Name:        util.FirstNonEmpty(entry.DisplayName, pa.APIName),
			Description: entry.Description,
			IconURL:     pickIcon(entry, achieved),
			Achieved:    achieved,
		})
	}
	return out
}

func pickIcon(a steam.SchemaAchievement, achieved bool) string {
	if achieved {
		return util.FirstNonEmpty(a.Icon, a.IconGray, constants.AssetConfig.PlaceholderIcon)
	}
	return util.FirstNonEmpty(a.IconGray, a.Icon, constants.AssetConfig.PlaceholderIcon)
}
