package asset

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/fileutil"
	"github.com/kapu/steam-profile-md/internal/util"
	"go.uber.org/zap"
)

type Options struct {
	Root    string        // asset root directory
	Skip    bool          // never touch the network or disk
	Timeout time.Duration // per-fetch bound

	// Consecutive download failures after which the CDN is left alone for
	// BreakerCooldown. Zero uses the default, negative disables the breaker.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Materializer keeps one local copy per asset key. Each key is resolved at
// most once per run; later calls return the first result, including a
// remote fallback after a failed fetch.
type Materializer struct {
	root    string
	skip    bool
	timeout time.Duration
	fetcher Fetcher
	breaker *util.CircuitBreaker
	logger  *zap.Logger

	mu       sync.Mutex
	resolved map[domain.AssetKey]domain.AssetRef
	fetches  int
}

func NewMaterializer(opts Options, fetcher Fetcher, logger *zap.Logger) *Materializer {
	if opts.Root == "" {
		opts.Root = constants.AssetConfig.DefaultRoot
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.AssetConfig.FetchTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = constants.AssetConfig.BreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = constants.AssetConfig.BreakerCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{
		root:     opts.Root,
		skip:     opts.Skip,
		timeout:  opts.Timeout,
		fetcher:  fetcher,
		breaker:  util.NewCircuitBreaker("asset-cdn", opts.BreakerFailures, opts.BreakerCooldown, logger),
		logger:   logger,
		resolved: make(map[domain.AssetKey]domain.AssetRef),
	}
}

// Skipping reports whether materialization is disabled by policy.
func (m *Materializer) Skipping() bool {
	return m.skip
}

// Fetches returns how many network fetches were attempted so far.
func (m *Materializer) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// Materialize returns the reference the document should use for remoteURL.
// It never fails: any problem falls back to the remote URL.
func (m *Materializer) Materialize(ctx context.Context, remoteURL string, key domain.AssetKey) domain.AssetRef {
	if remoteURL == "" {
		return domain.AssetRef{}
	}
	if m.skip {
		return domain.RemoteRef(remoteURL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ref, ok := m.resolved[key]; ok {
		return ref
	}
	ref := m.materialize(ctx, remoteURL, key)
	m.resolved[key] = ref
	return ref
}

// materialize must be called with m.mu held.
func (m *Materializer) materialize(ctx context.Context, remoteURL string, key domain.AssetKey) domain.AssetRef {
	rel, err := RelativePath(key)
	if err != nil {
		m.logger.Warn("Asset key rejected, using remote URL",
			zap.Stringer("key", key),
			zap.Error(err),
		)
		return domain.RemoteRef(remoteURL)
	}

	dest := filepath.Join(m.root, rel)
	local := domain.AssetRef{
		Ref:       filepath.ToSlash(dest),
		Local:     true,
		RemoteURL: remoteURL,
	}

	if fileutil.FileExists(dest) {
		m.logger.Debug("Asset already stored", zap.Stringer("key", key), zap.String("path", dest))
		return local
	}

	if !m.breaker.CanExecute() {
		m.logger.Debug("Asset CDN circuit open, using remote URL", zap.Stringer("key", key))
		return domain.RemoteRef(remoteURL)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.fetches++
	data, err := m.fetcher.Fetch(fetchCtx, remoteURL)
	if err != nil {
		m.breaker.RecordFailure()
		m.logger.Warn("Asset download failed, using remote URL",
			zap.Stringer("key", key),
			zap.String("url", remoteURL),
			zap.Error(err),
		)
		return domain.RemoteRef(remoteURL)
	}
	m.breaker.RecordSuccess()

	if err := fileutil.WriteFileAtomic(dest, data, 0o644); err != nil {
		m.logger.Warn("Asset write failed, using remote URL",
			zap.Stringer("key", key),
			zap.String("path", dest),
			zap.Error(err),
		)
		return domain.RemoteRef(remoteURL)
	}

	m.logger.Info("Asset stored",
		zap.String("kind", key.Kind.String()),
		zap.String("path", local.Ref),
		zap.Int("bytes", len(data)),
	)
	return local
}
