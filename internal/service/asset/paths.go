package asset

import (
	stderrors "errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/util"
)

// ErrUnknownAssetKind is returned for keys whose kind has no directory.
var ErrUnknownAssetKind = stderrors.New("unknown asset kind")

// RelativePath maps a key to its location below the asset root:
//
//	covers/<appid>_header.jpg
//	covers/avatar_<steamid>.jpg
//	screenshots/<appid>/<n>.jpg
//	achievements/<appid>/<name>.jpg
//	descriptions/<appid>/<file>
//
// Every free-text component is reduced to [A-Za-z0-9_-].
func RelativePath(key domain.AssetKey) (string, error) {
	owner := util.SafeFilename(key.Owner)

	switch key.Kind {
	case domain.AssetCover:
		return filepath.Join("covers", owner+"_header.jpg"), nil
	case domain.AssetAvatar:
		return filepath.Join("covers", "avatar_"+owner+".jpg"), nil
	case domain.AssetScreenshot:
		return filepath.Join("screenshots", owner, util.SafeFilename(key.Name)+".jpg"), nil
	case domain.AssetAchievement:
		return filepath.Join("achievements", owner, util.SafeFilename(key.Name)+".jpg"), nil
	case domain.AssetDescription:
		return filepath.Join("descriptions", owner, safeBasename(key.Name)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAssetKind, key.Kind)
	}
}

// safeBasename sanitizes stem and extension separately so "hero.gif" keeps
// its extension. Names without one get ".jpg".
func safeBasename(name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if len(ext) <= 1 {
		return util.SafeFilename(stem) + ".jpg"
	}
	return util.SafeFilename(stem) + "." + util.SafeFilename(ext[1:])
}
