// Package render turns a domain.Document into the profile Markdown and,
// optionally, a standalone HTML page.
package render

import (
	stderrors "errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/domain"
	"github.com/kapu/steam-profile-md/internal/markup"
	"github.com/kapu/steam-profile-md/internal/util"
)

// ErrNoProfile is returned when the document has no profile to render.
var ErrNoProfile = stderrors.New("document has no profile")

const unknown = "Unknown"

// Renderer is stateless apart from the time zone used for timestamps, so
// the same document always renders to the same bytes.
type Renderer struct {
	loc *time.Location
}

func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

type headerView struct {
	Name       string
	ProfileURL string
	Avatar     string
	SteamID    string
	LastOnline string
	Level      string
	Friends    string
	TotalHours int
	Bio        string
	Country    string
}

type entry struct {
	ordinal int
	rec     *domain.GameRecord
	label   string // "N. name glyphs"
	anchor  string
}

func (r *Renderer) Render(doc *domain.Document) (string, error) {
	if doc == nil || doc.Profile == nil {
		return "", ErrNoProfile
	}

	header, err := executeTemplate("profile_header", r.headerView(doc))
	if err != nil {
		return "", fmt.Errorf("render profile header: %w", err)
	}

	entries := make([]entry, 0, len(doc.Records))
	for _, rec := range doc.Records {
		if rec == nil {
			continue
		}
		ordinal := len(entries) + 1
		glyphs := platformGlyphs(rec)
		entries = append(entries, entry{
			ordinal: ordinal,
			rec:     rec,
			label:   strings.TrimSpace(fmt.Sprintf("%d. %s %s", ordinal, markup.Escape(rec.Name), strings.Join(glyphs, " "))),
			anchor:  markup.Anchor(ordinal, glyphs, rec.Name),
		})
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")

	writeContents(&sb, entries)

	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "## Games (%d)\n\n", len(entries))

	for _, e := range entries {
		writeGame(&sb, e)
	}

	return sb.String(), nil
}

func (r *Renderer) headerView(doc *domain.Document) headerView {
	p := doc.Profile

	bio := "No information"
	if strings.TrimSpace(p.Bio) != "" {
		bio = markup.Escape(p.Bio)
	}

	return headerView{
		Name:       markup.Escape(p.PersonaName),
		ProfileURL: p.ProfileURL,
		Avatar:     refOr(doc.Avatar, p.AvatarURL),
		SteamID:    p.SteamID,
		LastOnline: util.FormatLastSeen(p.LastLogoff, r.loc),
		Level:      optionalInt(doc.Stats.Level),
		Friends:    optionalInt(doc.Stats.Friends),
		TotalHours: doc.Stats.TotalPlayedHours,
		Bio:        bio,
		Country:    util.FirstNonEmpty(p.CountryCode, unknown),
	}
}

func writeContents(sb *strings.Builder, entries []entry) {
	fmt.Fprintf(sb, "<details>\n<summary>%s Table of contents</summary>\n\n", constants.Glyphs.Contents)
	for _, e := range entries {
		fmt.Fprintf(sb, `<a href="#%s">`, e.anchor)
		if cover := refOr(e.rec.Header, e.rec.HeaderImageURL); cover != "" {
			fmt.Fprintf(sb, `<img src="%s" alt="cover image" width="%d" style="vertical-align:middle; margin-right:8px;"/> `,
				attr(cover), constants.OutputConfig.ThumbWidth)
		}
		fmt.Fprintf(sb, "%s</a>\n --- \n", e.label)
	}
	sb.WriteString("\n</details>\n\n")
}

func writeGame(sb *strings.Builder, e entry) {
	rec := e.rec

	fmt.Fprintf(sb, "<a id=\"%s\"></a>\n", e.anchor)
	fmt.Fprintf(sb, "### %s\n", e.label)
	if cover := refOr(rec.Header, rec.HeaderImageURL); cover != "" {
		fmt.Fprintf(sb, "<img src=\"%s\" alt=\"%s\" width=\"%s\">\n",
			attr(cover), attr(rec.Name), constants.OutputConfig.HeaderWidth)
	}
	sb.WriteString("\n")

	fmt.Fprintf(sb, "- **Playtime:** %d hours\n", rec.PlayedHours)
	fmt.Fprintf(sb, "- **Price:** %s\n", rec.PriceLabel)
	fmt.Fprintf(sb, "- **Price/hour:** %s\n", util.FirstNonEmpty(rec.PricePerHour, constants.Glyphs.NoPerHour))
	if len(rec.Creators) > 0 {
		links := make([]string, 0, len(rec.Creators))
		for _, c := range rec.Creators {
			links = append(links, fmt.Sprintf("[%s](%s)", markup.Escape(c.Name), c.SearchURL))
		}
		fmt.Fprintf(sb, "- **Creator:** %s\n", strings.Join(links, ", "))
	}
	fmt.Fprintf(sb, "- **Developer:** %s\n", util.JoinOr(escapeAll(rec.Developers), unknown))
	fmt.Fprintf(sb, "- **Publisher:** %s\n", util.JoinOr(escapeAll(rec.Publishers), unknown))
	fmt.Fprintf(sb, "- **Genres:** %s\n", util.JoinOr(escapeAll(rec.Genres), unknown))
	fmt.Fprintf(sb, "- **Achievements:** %d/%d\n", rec.EarnedAchievements(), len(rec.Achievements))

	fmt.Fprintf(sb, "\n**Short description:** %s\n\n", markup.Escape(rec.ShortDescription))

	detailed := util.FirstNonEmpty(rec.RewrittenDescription, rec.DetailedDescription)
	detailed = strings.NewReplacer("\r", " ", "\n", " ").Replace(detailed)
	fmt.Fprintf(sb, "<details>\n<summary>Detailed description</summary>\n\n%s\n\n</details>\n\n", detailed)

	if len(rec.Achievements) > 0 {
		sb.WriteString("<details>\n<summary>Achievements Details</summary>\n\n<table>\n")
		for _, a := range rec.Achievements {
			state := constants.Glyphs.Unearned
			if a.Achieved {
				state = constants.Glyphs.Earned
			}
			fmt.Fprintf(sb, "<tr><td><img src='%s' width='%d'></td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				attr(refOr(a.Icon, a.IconURL)), constants.OutputConfig.IconWidth, state,
				markup.Escape(a.Name), markup.Escape(a.Description))
		}
		sb.WriteString("</table>\n</details>\n\n")
	}

	if shots := screenshotRefs(rec); len(shots) > 0 {
		sb.WriteString("<details>\n<summary>Screenshots</summary>\n\n")
		for _, s := range shots {
			fmt.Fprintf(sb, "<img src=\"%s\" alt=\"Screenshot\" width=\"%s\" style=\"margin:5px 0;\">  \n",
				attr(s), constants.OutputConfig.ShotWidth)
		}
		sb.WriteString("\n</details>\n\n")
	}

	sb.WriteString("---\n\n")
}

func platformGlyphs(rec *domain.GameRecord) []string {
	var out []string
	if rec.HasPlatform(domain.PlatformWindows) {
		out = append(out, constants.Glyphs.Windows)
	}
	if rec.HasPlatform(domain.PlatformMac) {
		out = append(out, constants.Glyphs.Mac)
	}
	if rec.HasPlatform(domain.PlatformLinux) {
		out = append(out, constants.Glyphs.Linux)
	}
	return out
}

// screenshotRefs prefers materialized refs and falls back to the raw URLs
// for records that never went through the materializer.
func screenshotRefs(rec *domain.GameRecord) []string {
	var out []string
	if len(rec.Screenshots) > 0 {
		for _, s := range rec.Screenshots {
			if !s.IsZero() {
				out = append(out, s.Ref)
			}
		}
		return out
	}
	for _, u := range rec.ScreenshotURLs {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

func refOr(ref domain.AssetRef, fallback string) string {
	if !ref.IsZero() {
		return ref.Ref
	}
	return fallback
}

func optionalInt(v *int) string {
	if v == nil {
		return unknown
	}
	return strconv.Itoa(*v)
}

func escapeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, markup.Escape(s))
	}
	return out
}

// attr makes a value safe inside a quoted HTML attribute.
func attr(s string) string {
	return html.EscapeString(s)
}
