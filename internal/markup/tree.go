package markup

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// TreeRewriter parses the description into an element tree, rewrites the
// src of img nodes and re-serializes it. Link-form references are then
// handled by the same pass the regex rewriter uses. Re-serialization
// normalizes the markup, so output differs from input whenever an image
// was rewritten.
type TreeRewriter struct {
	assets AssetResolver
	logger *zap.Logger
}

// NewTreeRewriter creates a TreeRewriter backed by assets.
func NewTreeRewriter(assets AssetResolver, logger *zap.Logger) *TreeRewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeRewriter{assets: assets, logger: logger}
}

func (t *TreeRewriter) Rewrite(ctx context.Context, text string, appID int) string {
	if text == "" || t.assets.Skipping() {
		return text
	}

	out := text
	if imgTagPattern.MatchString(text) {
		rewritten, err := t.rewriteTags(ctx, text, appID)
		if err != nil {
			t.logger.Warn("Description parse failed, keeping original markup",
				zap.Int("appid", appID),
				zap.Error(err),
			)
		} else {
			out = rewritten
		}
	}

	tags := imgTagPattern.FindAllStringSubmatchIndex(out, -1)
	return applyEdits(out, linkEdits(ctx, t.assets, out, tags, appID))
}

func (t *TreeRewriter) rewriteTags(ctx context.Context, text string, appID int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", err
	}

	changed := false
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		ref, ok := resolveImage(ctx, t.assets, src, appID)
		if !ok {
			return
		}
		sel.SetAttr("src", ref.Ref)
		changed = true
	})

	if !changed {
		return text, nil
	}
	return doc.Find("body").Html()
}

// NewDescriptionRewriter returns the tree rewriter for mode "tree" and the
// regex rewriter otherwise.
func NewDescriptionRewriter(mode string, assets AssetResolver, logger *zap.Logger) DescriptionRewriter {
	if strings.EqualFold(strings.TrimSpace(mode), "tree") {
		return NewTreeRewriter(assets, logger)
	}
	return NewRewriter(assets)
}
