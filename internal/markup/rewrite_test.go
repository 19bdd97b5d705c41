package markup

import (
	"context"
	"strings"
	"testing"

	"github.com/kapu/steam-profile-md/internal/domain"
)

// fakeAssets materializes everything under assets/ unless the URL is marked
// as failing.
type fakeAssets struct {
	skip  bool
	fail  map[string]bool
	calls []string
	keys  []domain.AssetKey
}

func (f *fakeAssets) Materialize(_ context.Context, remoteURL string, key domain.AssetKey) domain.AssetRef {
	f.calls = append(f.calls, remoteURL)
	f.keys = append(f.keys, key)
	if f.skip || f.fail[remoteURL] {
		return domain.RemoteRef(remoteURL)
	}
	return domain.AssetRef{
		Ref:       "assets/descriptions/" + key.Owner + "/" + key.Name,
		Local:     true,
		RemoteURL: remoteURL,
	}
}

func (f *fakeAssets) Skipping() bool { return f.skip }

func TestRewriterRewrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		fail      map[string]bool
		want      string
		wantCalls int
	}{
		{
			name:      "no references",
			in:        "<p>Explore a vast world.</p> Plain [link](https://example.com).",
			want:      "<p>Explore a vast world.</p> Plain [link](https://example.com).",
			wantCalls: 0,
		},
		{
			name:      "tag form keeps attributes",
			in:        `<p>Intro</p><img src="https://cdn.example/steam/apps/620/extras/hero.gif?t=1" alt="Hero" width="600"> end`,
			want:      `<p>Intro</p><img src="assets/descriptions/620/hero.gif" alt="Hero" width="600"> end`,
			wantCalls: 1,
		},
		{
			name:      "single quoted upper-case tag",
			in:        `<IMG class='x' SRC='https://cdn.example/a/b.jpg'>`,
			want:      `<IMG class='x' SRC='assets/descriptions/620/b.jpg'>`,
			wantCalls: 1,
		},
		{
			name:      "link form keeps alt text",
			in:        "See ![Boss fight](https://cdn.example/a/boss.png) now",
			want:      "See ![Boss fight](assets/descriptions/620/boss.png) now",
			wantCalls: 1,
		},
		{
			name:      "link form inside tag is not matched twice",
			in:        `<img alt="![x](https://cdn.example/x.png)" src="https://cdn.example/y.png">`,
			want:      `<img alt="![x](https://cdn.example/x.png)" src="assets/descriptions/620/y.png">`,
			wantCalls: 1,
		},
		{
			name:      "failed materialization leaves reference",
			in:        `<img src="https://cdn.example/broken.png"> and ![ok](https://cdn.example/ok.png)`,
			fail:      map[string]bool{"https://cdn.example/broken.png": true},
			want:      `<img src="https://cdn.example/broken.png"> and ![ok](assets/descriptions/620/ok.png)`,
			wantCalls: 2,
		},
		{
			name:      "non-http source untouched",
			in:        `<img src="{STEAM_APP_IMAGE}/extras/a.gif"><img src="data:image/png;base64,AAAA">`,
			want:      `<img src="{STEAM_APP_IMAGE}/extras/a.gif"><img src="data:image/png;base64,AAAA">`,
			wantCalls: 0,
		},
		{
			name:      "data-src is not a source",
			in:        `<img data-src="https://cdn.example/lazy.png" src="https://cdn.example/real.png">`,
			want:      `<img data-src="https://cdn.example/lazy.png" src="assets/descriptions/620/real.png">`,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assets := &fakeAssets{fail: tt.fail}
			got := NewRewriter(assets).Rewrite(context.Background(), tt.in, 620)
			if got != tt.want {
				t.Fatalf("Rewrite() =\n%s\nwant\n%s", got, tt.want)
			}
			if len(assets.calls) != tt.wantCalls {
				t.Fatalf("materialize calls = %d, want %d (%v)", len(assets.calls), tt.wantCalls, assets.calls)
			}
		})
	}
}

func TestRewriterSkipLeavesTextUnchanged(t *testing.T) {
	t.Parallel()

	in := `<img src="https://cdn.example/a.png?x=1&amp;y=2"> ![alt](https://cdn.example/b.png)`
	assets := &fakeAssets{skip: true}
	if got := NewRewriter(assets).Rewrite(context.Background(), in, 10); got != in {
		t.Fatalf("Rewrite() with skip changed text: %q", got)
	}
	if len(assets.calls) != 0 {
		t.Fatalf("skip should not materialize, got %v", assets.calls)
	}
}

func TestRewriterUnescapesEntitiesAndKeysByBasename(t *testing.T) {
	t.Parallel()

	in := `<img src="https://cdn.example/path/a.png?x=1&amp;y=2">`
	assets := &fakeAssets{}
	NewRewriter(assets).Rewrite(context.Background(), in, 10)

	if len(assets.calls) != 1 || assets.calls[0] != "https://cdn.example/path/a.png?x=1&y=2" {
		t.Fatalf("unexpected materialize URL: %v", assets.calls)
	}
	want := domain.AssetKey{Kind: domain.AssetDescription, Owner: "10", Name: "a.png"}
	if assets.keys[0] != want {
		t.Fatalf("key = %+v, want %+v", assets.keys[0], want)
	}
}

func TestURLBasename(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://cdn.example/a/b/c.jpg?t=1": "c.jpg",
		"https://cdn.example/a/b/c.jpg#top": "c.jpg",
		"https://cdn.example/":              "cdn.example",
		"":                                  "image",
	}
	for in, want := range tests {
		if got := urlBasename(in); got != want {
			t.Errorf("urlBasename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTreeRewriter(t *testing.T) {
	t.Parallel()

	assets := &fakeAssets{}
	rw := NewTreeRewriter(assets, nil)

	in := `<h2>Features</h2><p>Intro <img src="https://cdn.example/hero.gif" alt="Hero"></p>`
	got := rw.Rewrite(context.Background(), in, 620)

	if !strings.Contains(got, `src="assets/descriptions/620/hero.gif"`) {
		t.Fatalf("tree rewrite missing local src: %s", got)
	}
	if !strings.Contains(got, `alt="Hero"`) || !strings.Contains(got, "<h2>Features</h2>") {
		t.Fatalf("tree rewrite lost markup: %s", got)
	}
	if strings.Contains(got, "<body>") || strings.Contains(got, "<html>") {
		t.Fatalf("tree rewrite leaked document wrapper: %s", got)
	}
}

func TestTreeRewriterLinksAndPassthrough(t *testing.T) {
	t.Parallel()

	assets := &fakeAssets{}
	rw := NewTreeRewriter(assets, nil)

	plain := "<p>Tom &amp; Jerry</p>"
	if got := rw.Rewrite(context.Background(), plain, 1); got != plain {
		t.Fatalf("text without images changed: %q", got)
	}

	link := "![map](https://cdn.example/map.png)"
	if got, want := rw.Rewrite(context.Background(), link, 1), "![map](assets/descriptions/1/map.png)"; got != want {
		t.Fatalf("Rewrite() = %q, want %q", got, want)
	}

	skipping := &fakeAssets{skip: true}
	in := `<img src="https://cdn.example/hero.gif">`
	if got := NewTreeRewriter(skipping, nil).Rewrite(context.Background(), in, 1); got != in {
		t.Fatalf("skip changed text: %q", got)
	}
}

func TestNewDescriptionRewriter(t *testing.T) {
	t.Parallel()

	if _, ok := NewDescriptionRewriter("tree", &fakeAssets{}, nil).(*TreeRewriter); !ok {
		t.Fatalf("mode tree should build a TreeRewriter")
	}
	if _, ok := NewDescriptionRewriter("", &fakeAssets{}, nil).(*Rewriter); !ok {
		t.Fatalf("default mode should build a Rewriter")
	}
}
