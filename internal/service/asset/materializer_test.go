package asset

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/pkg/errors"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newFakeFetcher(failing ...string) *fakeFetcher {
	f := &fakeFetcher{calls: map[string]int{}, fail: map[string]bool{}}
	for _, u := range failing {
		f.fail[u] = true
	}
	return f
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if f.fail[url] {
		return nil, stderrors.New("connection reset")
	}
	return []byte("image:" + url), nil
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func TestMaterializeStoresOncePerKey(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fetcher := newFakeFetcher()
	m := NewMaterializer(Options{Root: root}, fetcher, nil)
	ctx := context.Background()

	key := domain.CoverKey(620)
	first := m.Materialize(ctx, "https://cdn.example/620/header.jpg", key)
	second := m.Materialize(ctx, "https://cdn.example/620/header.jpg?t=2", key)

	if first != second {
		t.Fatalf("repeated calls returned different refs: %+v vs %+v", first, second)
	}
	if !first.Local {
		t.Fatalf("expected local ref, got %+v", first)
	}
	if got := fetcher.total(); got != 1 {
		t.Fatalf("fetches = %d, want 1", got)
	}
	if m.Fetches() != 1 {
		t.Fatalf("Fetches() = %d, want 1", m.Fetches())
	}

	want := filepath.ToSlash(filepath.Join(root, "covers", "620_header.jpg"))
	if first.Ref != want {
		t.Fatalf("Ref = %q, want %q", first.Ref, want)
	}
	data, err := os.ReadFile(filepath.FromSlash(first.Ref))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "image:https://cdn.example/620/header.jpg" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestMaterializeSkipDoesNoIO(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "assets")
	fetcher := newFakeFetcher()
	m := NewMaterializer(Options{Root: root, Skip: true}, fetcher, nil)

	ref := m.Materialize(context.Background(), "https://cdn.example/avatar.jpg", domain.AvatarKey("7656"))
	if ref.Local || ref.Ref != "https://cdn.example/avatar.jpg" {
		t.Fatalf("expected remote ref, got %+v", ref)
	}
	if !m.Skipping() {
		t.Fatalf("Skipping() = false")
	}
	if fetcher.total() != 0 {
		t.Fatalf("skip mode fetched %d times", fetcher.total())
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("skip mode created the asset root: %v", err)
	}
}

func TestMaterializeFailureFallsBackAndIsRemembered(t *testing.T) {
	t.Parallel()

	url := "https://cdn.example/broken.jpg"
	fetcher := newFakeFetcher(url)
	m := NewMaterializer(Options{Root: t.TempDir()}, fetcher, nil)
	key := domain.ScreenshotKey(10, 0)

	for i := 0; i < 3; i++ {
		ref := m.Materialize(context.Background(), url, key)
		if ref.Local || ref.Ref != url {
			t.Fatalf("call %d: expected remote fallback, got %+v", i, ref)
		}
	}
	if fetcher.total() != 1 {
		t.Fatalf("failed key fetched %d times, want 1", fetcher.total())
	}
}

func TestMaterializeReusesExistingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	existing := filepath.Join(root, "achievements", "440", "ACH_ONE.jpg")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := newFakeFetcher()
	m := NewMaterializer(Options{Root: root}, fetcher, nil)
	ref := m.Materialize(context.Background(), "https://cdn.example/ach.jpg", domain.AchievementKey(440, "ACH_ONE"))

	if !ref.Local || ref.Ref != filepath.ToSlash(existing) {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if fetcher.total() != 0 {
		t.Fatalf("existing file was fetched again")
	}
}

func TestMaterializeEmptyURL(t *testing.T) {
	t.Parallel()

	m := NewMaterializer(Options{Root: t.TempDir()}, newFakeFetcher(), nil)
	if ref := m.Materialize(context.Background(), "", domain.CoverKey(1)); !ref.IsZero() {
		t.Fatalf("expected zero ref, got %+v", ref)
	}
}

func TestMaterializeDistinctKeysSameURL(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	m := NewMaterializer(Options{Root: t.TempDir()}, fetcher, nil)
	url := "https://cdn.example/shared.jpg"

	a := m.Materialize(context.Background(), url, domain.ScreenshotKey(5, 0))
	b := m.Materialize(context.Background(), url, domain.ScreenshotKey(5, 1))
	if a.Ref == b.Ref {
		t.Fatalf("distinct keys share a path: %q", a.Ref)
	}
	if fetcher.total() != 2 {
		t.Fatalf("fetches = %d, want 2", fetcher.total())
	}
}

func TestRelativePathStaysUnderRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  domain.AssetKey
		want string
	}{
		{"cover", domain.CoverKey(620), filepath.Join("covers", "620_header.jpg")},
		{"avatar", domain.AvatarKey("76561197960287930"), filepath.Join("covers", "avatar_76561197960287930.jpg")},
		{"screenshot", domain.ScreenshotKey(620, 3), filepath.Join("screenshots", "620", "3.jpg")},
		{"achievement traversal", domain.AchievementKey(620, "../../etc/passwd"), filepath.Join("achievements", "620", "______etc_passwd.jpg")},
		{"description keeps extension", domain.DescriptionKey(620, "hero banner.gif"), filepath.Join("descriptions", "620", "hero_banner.gif")},
		{"description without extension", domain.DescriptionKey(620, "image"), filepath.Join("descriptions", "620", "image.jpg")},
		{"owner sanitized", domain.AssetKey{Kind: domain.AssetScreenshot, Owner: "../x", Name: "0"}, filepath.Join("screenshots", "___x", "0.jpg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RelativePath(tt.key)
			if err != nil {
				t.Fatalf("RelativePath() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("RelativePath() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "..") {
				t.Fatalf("path escapes root: %q", got)
			}
		})
	}

	if _, err := RelativePath(domain.AssetKey{Kind: "bogus", Owner: "1"}); !stderrors.Is(err, ErrUnknownAssetKind) {
		t.Fatalf("expected ErrUnknownAssetKind, got %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("jpegdata"))
		case "/slow.jpg":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client())

	data, err := f.Fetch(context.Background(), srv.URL+"/ok.jpg")
	if err != nil || string(data) != "jpegdata" {
		t.Fatalf("Fetch(ok) = %q, %v", data, err)
	}
	if gotUA == "" {
		t.Fatalf("User-Agent header not sent")
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.jpg")
	if errors.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 API error, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, srv.URL+"/slow.jpg"); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestHTTPFetcherRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client())
	f.maxBytes = 16

	if _, err := f.Fetch(context.Background(), srv.URL); !stderrors.Is(err, ErrAssetTooLarge) {
		t.Fatalf("expected ErrAssetTooLarge, got %v", err)
	}
}

func TestMaterializeOverHTTPFallsBackPerAsset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good.jpg" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMaterializer(Options{Root: t.TempDir(), Timeout: time.Second}, NewHTTPFetcher(srv.Client()), nil)
	good := m.Materialize(context.Background(), srv.URL+"/good.jpg", domain.ScreenshotKey(1, 0))
	bad := m.Materialize(context.Background(), srv.URL+"/bad.jpg", domain.ScreenshotKey(1, 1))

	if !good.Local {
		t.Fatalf("good asset not stored: %+v", good)
	}
	if bad.Local || bad.Ref != srv.URL+"/bad.jpg" {
		t.Fatalf("bad asset should fall back to remote: %+v", bad)
	}
}

func TestMaterializeStopsFetchingAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var urls []string
	for i := 1; i <= 5; i++ {
		urls = append(urls, "https://cdn.example/shot"+string(rune('0'+i))+".jpg")
	}
	fetcher := newFakeFetcher(urls...)
	m := NewMaterializer(Options{Root: t.TempDir(), BreakerFailures: 2, BreakerCooldown: time.Hour}, fetcher, nil)

	for i, u := range urls {
		ref := m.Materialize(context.Background(), u, domain.ScreenshotKey(440, i+1))
		if ref.Local || ref.Ref != u {
			t.Fatalf("asset %d should fall back to remote: %+v", i+1, ref)
		}
	}

	if got := fetcher.total(); got != 2 {
		t.Fatalf("fetch attempts = %d, want 2 before the breaker opened", got)
	}
	if got := m.Fetches(); got != 2 {
		t.Fatalf("Fetches() = %d, want 2", got)
	}
}

func TestMaterializeBreakerDisabled(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher("https://cdn.example/a.jpg", "https://cdn.example/b.jpg", "https://cdn.example/c.jpg")
	m := NewMaterializer(Options{Root: t.TempDir(), BreakerFailures: -1}, fetcher, nil)

	for i, u := range []string{"https://cdn.example/a.jpg", "https://cdn.example/b.jpg", "https://cdn.example/c.jpg"} {
		m.Materialize(context.Background(), u, domain.ScreenshotKey(440, i+1))
	}
	if got := fetcher.total(); got != 3 {
		t.Fatalf("fetch attempts = %d, want 3", got)
	}
}
