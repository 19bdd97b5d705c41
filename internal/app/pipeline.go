package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/steam-profile-md/internal/config"
	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/fileutil"
	"github.com/kapu/steam-profile-md/internal/markup"
	"github.com/kapu/steam-profile-md/internal/normalize"
	"github.com/kapu/steam-profile-md/internal/render"
	"github.com/kapu/steam-profile-md/internal/service/asset"
	"github.com/kapu/steam-profile-md/internal/service/steam"
	"github.com/kapu/steam-profile-md/internal/util"
	"github.com/kapu/steam-profile-md/pkg/errors"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// DataSource is the upstream the pipeline reads from.
type DataSource interface {
	ResolveVanityURL(ctx context.Context, vanity string) (string, error)
	GetPlayerSummary(ctx context.Context, steamID string) (*steam.PlayerSummary, error)
	GetOwnedGames(ctx context.Context, steamID string) ([]steam.OwnedGame, error)
	GetAppDetails(ctx context.Context, appID int) (*steam.AppDetails, error)
	GetAchievements(ctx context.Context, steamID string, appID int) (*steam.AchievementPayload, error)
	GetFriendCount(ctx context.Context, steamID string) (int, error)
	GetSteamLevel(ctx context.Context, steamID string) (int, error)
}

// Dependencies holds everything the pipeline needs. HTML may be nil.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Source     DataSource
	Assets     *asset.Materializer
	Rewriter   markup.DescriptionRewriter
	Normalizer *normalize.Normalizer
	Renderer   *render.Renderer
	HTML       *render.HTMLExporter
	Pacer      Pacer
}

// Result summarizes a finished export.
type Result struct {
	RunID        string
	SteamID      string
	MarkdownPath string
	HTMLPath     string
	Titles       int
	Skipped      int
	AssetFetches int
	Duration     time.Duration
}

// Pipeline runs one export: identity, summary, library, per-title
// enrichment, aggregates, render, write. Titles are processed one at a
// time in library order.
type Pipeline struct {
	cfg        *config.Config
	logger     *zap.Logger
	source     DataSource
	assets     *asset.Materializer
	rewriter   markup.DescriptionRewriter
	normalizer *normalize.Normalizer
	renderer   *render.Renderer
	html       *render.HTMLExporter
	pacer      Pacer
}

func NewPipeline(deps *Dependencies) (*Pipeline, error) {
	if deps == nil {
		return nil, fmt.Errorf("dependencies must not be nil")
	}
	if deps.Config == nil || deps.Source == nil || deps.Assets == nil || deps.Renderer == nil {
		return nil, fmt.Errorf("config, source, assets and renderer are required")
	}

	p := &Pipeline{
		cfg:        deps.Config,
		logger:     deps.Logger,
		source:     deps.Source,
		assets:     deps.Assets,
		rewriter:   deps.Rewriter,
		normalizer: deps.Normalizer,
		renderer:   deps.Renderer,
		html:       deps.HTML,
		pacer:      deps.Pacer,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.rewriter == nil {
		p.rewriter = markup.NewRewriter(p.assets)
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New(p.logger)
	}
	if p.pacer == nil {
		p.pacer = NewPacer(0)
	}
	return p, nil
}

func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", res.RunID))

	steamID, err := p.resolveIdentity(ctx, log)
	if err != nil {
		return nil, err
	}
	res.SteamID = steamID

	log.Info("Fetching player summary", zap.String("steamid", steamID))
	summary, err := p.source.GetPlayerSummary(ctx, steamID)
	if err != nil {
		return nil, errors.NewFetchError(errors.StagePrimary, "player summary", err)
	}
	if summary == nil {
		return nil, errors.NewFetchError(errors.StagePrimary, "player summary", steam.ErrProfileNotFound)
	}
	profile := normalize.Profile(summary)
	if profile.SteamID == "" {
		profile.SteamID = steamID
		profile.ProfileURL = constants.APIConfig.CommunityBaseURL + "/profiles/" + steamID
	}

	log.Info("Fetching owned games")
	games, err := p.source.GetOwnedGames(ctx, steamID)
	if err != nil {
		return nil, errors.NewFetchError(errors.StagePrimary, "owned games", err)
	}
	log.Info("Library loaded", zap.Int("games", len(games)))

	records := make([]*domain.GameRecord, 0, len(games))
	for i, game := range games {
		if err := p.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		rec, err := p.processTitleSafely(ctx, log, steamID, i+1, len(games), game)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn("Skipping title",
				zap.Int("appid", game.AppID),
				zap.String("name", game.Name),
				zap.Error(err),
			)
			res.Skipped++
			continue
		}
		records = append(records, rec)
	}

	doc := &domain.Document{
		Profile: profile,
		Stats:   p.fetchStats(ctx, log, steamID, records),
		Avatar:  p.assets.Materialize(ctx, profile.AvatarURL, domain.AvatarKey(steamID)),
		Records: records,
	}

	markdown, err := p.renderer.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	name := constants.OutputConfig.FilePrefix + util.SafeFilename(util.FirstNonEmpty(p.cfg.Steam.VanityURL, steamID))
	res.MarkdownPath = filepath.Join(p.cfg.Output.Dir, name+constants.OutputConfig.MarkdownExt)
	if err := fileutil.WriteFileAtomic(res.MarkdownPath, []byte(markdown), 0o644); err != nil {
		return nil, errors.NewOutputError(res.MarkdownPath, err)
	}
	log.Info("Markdown written", zap.String("path", res.MarkdownPath), zap.Int("bytes", len(markdown)))

	if p.html != nil {
		page, err := p.html.Export(ctx, "Steam Profile of "+profile.PersonaName, markdown)
		if err != nil {
			return nil, fmt.Errorf("export html: %w", err)
		}
		res.HTMLPath = filepath.Join(p.cfg.Output.Dir, name+constants.OutputConfig.HTMLExt)
		if err := fileutil.WriteFileAtomic(res.HTMLPath, []byte(page), 0o644); err != nil {
			return nil, errors.NewOutputError(res.HTMLPath, err)
		}
		log.Info("HTML written", zap.String("path", res.HTMLPath))
	}

	res.Titles = len(records)
	res.AssetFetches = p.assets.Fetches()
	res.Duration = time.Since(start)

	log.Info("Export complete",
		zap.Int("titles", res.Titles),
		zap.Int("skipped", res.Skipped),
		zap.Int("asset_fetches", res.AssetFetches),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}

func (p *Pipeline) resolveIdentity(ctx context.Context, log *zap.Logger) (string, error) {
	vanity := p.cfg.Steam.VanityURL
	if vanity == "" {
		log.Info("Using steam id", zap.String("steamid", p.cfg.Steam.SteamID))
		return p.cfg.Steam.SteamID, nil
	}

	log.Info("Resolving vanity URL", zap.String("vanity", vanity))
	steamID, err := p.source.ResolveVanityURL(ctx, vanity)
	if err != nil {
		var ie *errors.IdentityError
		if !stderrors.As(err, &ie) {
			err = errors.NewIdentityError(vanity, err)
		}
		return "", err
	}
	return steamID, nil
}

// processTitleSafely recovers a panic on one title into an error so a
// malformed payload cannot end the run.
func (p *Pipeline) processTitleSafely(ctx context.Context, log *zap.Logger, steamID string, ordinal, total int, game steam.OwnedGame) (rec *domain.GameRecord, err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		rec, err = p.processTitle(ctx, log, steamID, ordinal, total, game)
	})
	if r := catcher.Recovered(); r != nil {
		return nil, fmt.Errorf("processing title panicked: %w", r.AsError())
	}
	return rec, err
}

func (p *Pipeline) processTitle(ctx context.Context, log *zap.Logger, steamID string, ordinal, total int, game steam.OwnedGame) (*domain.GameRecord, error) {
	log.Info(fmt.Sprintf("[%d/%d] %s", ordinal, total, util.TruncateString(game.Name, constants.OutputConfig.NameLogRunes)),
		zap.Int("appid", game.AppID),
	)

	details, err := p.source.GetAppDetails(ctx, game.AppID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("Store details unavailable, using defaults",
			zap.Int("appid", game.AppID),
			zap.Error(errors.NewFetchError(errors.StageSecondary, "app details", err)),
		)
		details = nil
	}

	achievements, err := p.source.GetAchievements(ctx, steamID, game.AppID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		fields := []zap.Field{
			zap.Int("appid", game.AppID),
			zap.Error(errors.NewFetchError(errors.StageSecondary, "achievements", err)),
		}
		// Titles without stats answer 400.
		if errors.StatusCode(err) == http.StatusBadRequest {
			log.Debug("Title has no achievements", fields...)
		} else {
			log.Warn("Achievements unavailable, using empty list", fields...)
		}
		achievements = nil
	}

	rec, err := p.normalizer.Normalize(steamID, game, details, achievements)
	if err != nil {
		return nil, err
	}

	p.materialize(ctx, log, rec)
	return rec, nil
}

// materialize resolves every asset a record references. The same keys are
// used wherever the record is rendered, so each image is fetched once.
func (p *Pipeline) materialize(ctx context.Context, log *zap.Logger, rec *domain.GameRecord) {
	rec.Header = p.assets.Materialize(ctx, rec.HeaderImageURL, domain.CoverKey(rec.AppID))

	rec.Screenshots = make([]domain.AssetRef, 0, len(rec.ScreenshotURLs))
	for i, u := range rec.ScreenshotURLs {
		rec.Screenshots = append(rec.Screenshots, p.assets.Materialize(ctx, u, domain.ScreenshotKey(rec.AppID, i+1)))
	}

	for i := range rec.Achievements {
		a := &rec.Achievements[i]
		a.Icon = p.assets.Materialize(ctx, a.IconURL, domain.AchievementKey(rec.AppID, a.Name))
	}

	rec.RewrittenDescription = p.rewriter.Rewrite(ctx, rec.DetailedDescription, rec.AppID)

	log.Debug("Assets resolved",
		zap.Int("appid", rec.AppID),
		zap.Int("screenshots", len(rec.Screenshots)),
		zap.Int("achievements", len(rec.Achievements)),
	)
}

func (p *Pipeline) fetchStats(ctx context.Context, log *zap.Logger, steamID string, records []*domain.GameRecord) domain.ProfileStats {
	stats := domain.ProfileStats{
		TotalPlayedHours: domain.TotalPlaytimeHours(records),
	}

	if friends, err := p.source.GetFriendCount(ctx, steamID); err != nil {
		log.Warn("Friend count unavailable",
			zap.Error(errors.NewFetchError(errors.StageSecondary, "friend list", err)))
	} else {
		stats.Friends = &friends
	}

	if level, err := p.source.GetSteamLevel(ctx, steamID); err != nil {
		log.Warn("Community level unavailable",
			zap.Error(errors.NewFetchError(errors.StageSecondary, "steam level", err)))
	} else {
		stats.Level = &level
	}

	return stats
}
