package markup

import (
	"context"
	"html"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/kapu/steam-profile-md/internal/domain"
)

// AssetResolver is the part of the asset materializer the rewriters need.
type AssetResolver interface {
	Materialize(ctx context.Context, remoteURL string, key domain.AssetKey) domain.AssetRef
	Skipping() bool
}

// DescriptionRewriter replaces image references in a store description with
// references to their materialized copies.
type DescriptionRewriter interface {
	Rewrite(ctx context.Context, text string, appID int) string
}

var (
	// <img ... src="URL" ...>, either quote style.
	imgTagPattern = regexp.MustCompile(`(?i)<img\b[^>]*?\ssrc\s*=\s*["']([^"']*)["'][^>]*>`)
	// ![alt](URL) with an optional "title".
	mdImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
)

// Rewriter is the regular-expression rewriter. It does not understand
// nested or malformed markup.
type Rewriter struct {
	assets AssetResolver
}

// NewRewriter creates a Rewriter backed by assets.
func NewRewriter(assets AssetResolver) *Rewriter {
	return &Rewriter{assets: assets}
}

type edit struct {
	start, end int
	text       string
}

// Rewrite substitutes every materialized image URL in text. Tag-form
// references are matched first; a link-form match inside a tag is ignored.
// Text without references, or with materialization skipped, is returned
// unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, text string, appID int) string {
	if text == "" || r.assets.Skipping() {
		return text
	}

	tags := imgTagPattern.FindAllStringSubmatchIndex(text, -1)
	edits := make([]edit, 0, len(tags))
	for _, m := range tags {
		raw := text[m[2]:m[3]]
		ref, ok := resolveImage(ctx, r.assets, html.UnescapeString(raw), appID)
		if !ok {
			continue
		}
		edits = append(edits, edit{start: m[2], end: m[3], text: html.EscapeString(ref.Ref)})
	}

	edits = append(edits, linkEdits(ctx, r.assets, text, tags, appID)...)
	return applyEdits(text, edits)
}

// linkEdits collects replacements for ![alt](url) references that do not
// overlap any of the given tag matches.
func linkEdits(ctx context.Context, assets AssetResolver, text string, tags [][]int, appID int) []edit {
	links := mdImagePattern.FindAllStringSubmatchIndex(text, -1)
	edits := make([]edit, 0, len(links))
	for _, m := range links {
		if insideAny(m[0], m[1], tags) {
			continue
		}
		ref, ok := resolveImage(ctx, assets, text[m[4]:m[5]], appID)
		if !ok {
			continue
		}
		edits = append(edits, edit{start: m[4], end: m[5], text: ref.Ref})
	}
	return edits
}

// resolveImage materializes an http(s) image URL under the description
// key of appID. ok is false when the reference should stay as it is.
func resolveImage(ctx context.Context, assets AssetResolver, rawURL string, appID int) (domain.AssetRef, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if !isRemoteURL(rawURL) {
		return domain.AssetRef{}, false
	}
	ref := assets.Materialize(ctx, rawURL, domain.DescriptionKey(appID, urlBasename(rawURL)))
	if !ref.Local || ref.Ref == "" {
		return domain.AssetRef{}, false
	}
	return ref, true
}

func isRemoteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// urlBasename returns the last path element of u, ignoring query and fragment.
func urlBasename(u string) string {
	p, _, _ := strings.Cut(u, "?")
	p, _, _ = strings.Cut(p, "#")
	base := path.Base(p)
	if base == "" || base == "." || base == "/" {
		return "image"
	}
	return base
}

func insideAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

func applyEdits(text string, edits []edit) string {
	if len(edits) == 0 {
		return text
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, e := range edits {
		b.WriteString(text[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.WriteString(text[last:])
	return b.String()
}
