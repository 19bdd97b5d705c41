package steam

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/pkg/errors"
	"go.uber.org/zap"
)

// ErrProfileNotFound is returned when the summary call lists no player.
var ErrProfileNotFound = stderrors.New("no profile found")

// ResolveVanityURL maps a custom profile name to a SteamID64.
func (c *Client) ResolveVanityURL(ctx context.Context, vanity string) (string, error) {
	params := url.Values{}
	params.Set("vanityurl", vanity)

	var resp vanityResponse
	if err := c.getJSON(ctx, WebAPI, "/ISteamUser/ResolveVanityURL/v1/", params, "vanity", &resp); err != nil {
		return "", errors.NewIdentityError(vanity, err)
	}
	if resp.Response.Success != 1 || resp.Response.SteamID == "" {
		var cause error
		if resp.Response.Message != "" {
			cause = stderrors.New(resp.Response.Message)
		}
		return "", errors.NewIdentityError(vanity, cause)
	}
	return resp.Response.SteamID, nil
}

func (c *Client) GetPlayerSummary(ctx context.Context, steamID string) (*PlayerSummary, error) {
	params := url.Values{}
	params.Set("steamids", steamID)

	var resp summariesResponse
	if err := c.getJSON(ctx, WebAPI, "/ISteamUser/GetPlayerSummaries/v2/", params, "player summary", &resp); err != nil {
		return nil, err
	}
	if len(resp.Response.Players) == 0 {
		return nil, fmt.Errorf("%w for SteamID %s", ErrProfileNotFound, steamID)
	}
	return &resp.Response.Players[0], nil
}

// GetOwnedGames lists the library in upstream order. A private library
// yields an empty list.
func (c *Client) GetOwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")

	var resp ownedGamesResponse
	if err := c.getJSON(ctx, WebAPI, "/IPlayerService/GetOwnedGames/v1/", params, "owned games", &resp); err != nil {
		return nil, err
	}
	return resp.Response.Games, nil
}

// GetAppDetails returns the store data for appID, or nil when the store
// reports the app as unavailable.
func (c *Client) GetAppDetails(ctx context.Context, appID int) (*AppDetails, error) {
	id := strconv.Itoa(appID)
	return cached(ctx, c, "appdetails:"+id, c.cacheTTL, func() (*AppDetails, error) {
		params := url.Values{}
		params.Set("appids", id)
		params.Set("l", "english")

		var resp map[string]appDetailsEntry
		if err := c.getJSON(ctx, StoreAPI, "/api/appdetails", params, "app details", &resp); err != nil {
			return nil, err
		}
		entry, ok := resp[id]
		if !ok || !entry.Success || entry.Data == nil {
			c.logger.Debug("Store has no details", zap.Int("appid", appID))
			return nil, nil
		}
		return entry.Data, nil
	})
}

func (c *Client) GetSchemaForGame(ctx context.Context, appID int) (*SchemaGame, error) {
	id := strconv.Itoa(appID)
	return cached(ctx, c, "schema:"+id, constants.CacheTTL.Schema, func() (*SchemaGame, error) {
		params := url.Values{}
		params.Set("appid", id)

		var resp schemaResponse
		if err := c.getJSON(ctx, WebAPI, "/ISteamUserStats/GetSchemaForGame/v2/", params, "achievement schema", &resp); err != nil {
			return nil, err
		}
		return resp.Game, nil
	})
}

func (c *Client) GetPlayerAchievements(ctx context.Context, steamID string, appID int) (*PlayerStats, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("appid", strconv.Itoa(appID))

	var resp playerStatsResponse
	if err := c.getJSON(ctx, WebAPI, "/ISteamUserStats/GetPlayerAchievements/v1/", params, "player achievements", &resp); err != nil {
		return nil, err
	}
	return resp.PlayerStats, nil
}

// GetAchievements fetches the schema and the player's unlock state for one
// title. Either part may be nil when upstream omits it.
func (c *Client) GetAchievements(ctx context.Context, steamID string, appID int) (*AchievementPayload, error) {
	schema, err := c.GetSchemaForGame(ctx, appID)
	if err != nil {
		return nil, err
	}
	player, err := c.GetPlayerAchievements(ctx, steamID, appID)
	if err != nil {
		return nil, err
	}
	return &AchievementPayload{
		AppID:  appID,
		Schema: schema,
		Player: player,
	}, nil
}

func (c *Client) GetFriendCount(ctx context.Context, steamID string) (int, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("relationship", "friend")

	var resp friendListResponse
	if err := c.getJSON(ctx, WebAPI, "/ISteamUser/GetFriendList/v1/", params, "friend list", &resp); err != nil {
		return 0, err
	}
	if resp.FriendsList == nil {
		return 0, errors.NewPayloadError("friend list", stderrors.New("friendslist missing"))
	}
	return len(resp.FriendsList.Friends), nil
}

func (c *Client) GetSteamLevel(ctx context.Context, steamID string) (int, error) {
	params := url.Values{}
	params.Set("steamid", steamID)

	var resp steamLevelResponse
	if err := c.getJSON(ctx, WebAPI, "/IPlayerService/GetSteamLevel/v1/", params, "steam level", &resp); err != nil {
		return 0, err
	}
	if resp.Response.PlayerLevel == nil {
		return 0, errors.NewPayloadError("steam level", stderrors.New("player_level missing"))
	}
	return *resp.Response.PlayerLevel, nil
}
