// Package extract holds the pure per-page field extractors shared by every
// listing scraper. Extractors take a parsed document (or a selection inside
// one) and return typed records; optional fields degrade to nil/empty, only a
// missing required container is an error for the caller to wrap.
package extract

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/textutil"
)

// MovieSummary is the minimal film record every listing collector produces.
// Rating, when present, is on the raw 1-10 half-star scale.
type MovieSummary struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Year   *int   `json:"year,omitempty"`
	Rating *int   `json:"rating,omitempty"`
	URL    string `json:"url"`
}

// Stars converts the raw 1-10 rating to the 0.5-5.0 star scale shown on the
// site.
func (m MovieSummary) Stars() *float64 {
	if m.Rating == nil {
		return nil
	}
	stars := float64(*m.Rating) / 2
	return &stars
}

func resolveFilmURL(base *url.URL, slug string) string {
	if base == nil {
		return fmt.Sprintf("/film/%s/", slug)
	}
	ref := &url.URL{Path: fmt.Sprintf("/film/%s/", slug)}
	return base.ResolveReference(ref).String()
}

// FilmIdentity reads film id/slug/name out of a listing item. The site has
// migrated most widgets to a react-component wrapper div carrying
// data-film-id/data-item-slug/data-item-name attributes; older widgets still
// use a film poster div with an img[alt] title. The attribute path is tried
// first, the img[alt] path is the fallback, and both produce the same record
// shape.
func FilmIdentity(sel *goquery.Selection, base *url.URL) (MovieSummary, bool) {
	component := sel.Find("div.react-component").First()
	if component.Length() == 0 && sel.Is("div.react-component") {
		component = sel
	}
	if component.Length() > 0 {
		if id, exists := component.Attr("data-film-id"); exists {
			slug := component.AttrOr("data-item-slug", component.AttrOr("data-film-slug", ""))
			rawName := component.AttrOr("data-item-name", "")
			return MovieSummary{
				ID:   id,
				Slug: slug,
				Name: textutil.CleanMovieName(rawName),
				Year: textutil.ExtractYear(rawName),
				URL:  resolveFilmURL(base, slug),
			}, true
		}
	}

	poster := sel.Find("div.film-poster").First()
	if poster.Length() == 0 && sel.Is("div.film-poster") {
		poster = sel
	}
	if poster.Length() == 0 {
		return MovieSummary{}, false
	}
	id, exists := poster.Attr("data-film-id")
	if !exists {
		return MovieSummary{}, false
	}
	slug := poster.AttrOr("data-film-slug", poster.AttrOr("data-target-link", ""))
	slug = strings.Trim(strings.TrimPrefix(slug, "/film/"), "/")
	name := poster.Find("img").First().AttrOr("alt", "")
	return MovieSummary{
		ID:   id,
		Slug: slug,
		Name: name,
		URL:  resolveFilmURL(base, slug),
	}, true
}

// Rating reads the rated-N css class off a listing item's rating span. The
// returned value stays on the raw 1-10 scale; star-scale consumers divide by
// two via Stars.
func Rating(sel *goquery.Selection) *int {
	var found *int
	sel.Find("span.rating").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		suffix, ok := htmlutil.ClassWithPrefix(span, "rated-")
		if !ok {
			return true
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			return true
		}
		found = &n
		return false
	})
	return found
}

// LogType distinguishes how a film ended up in a log: watched or rewatched
// entries carry free-text dates, added entries carry ISO datetimes.
type LogType string

const (
	LogWatched   LogType = "Watched"
	LogRewatched LogType = "Rewatched"
	LogAdded     LogType = "Added"
)

type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

const freeTextDateLayout = "02 Jan 2006"

// ParseLogDate parses a log date, dispatching on the log type rather than
// sniffing the format: Added logs carry ISO-8601 datetimes, Watched and
// Rewatched logs carry free-text "DD Mon YYYY".
func ParseLogDate(logType LogType, raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	var t time.Time
	var err error
	switch logType {
	case LogAdded:
		t, err = time.Parse(time.RFC3339, raw)
	case LogWatched, LogRewatched:
		t, err = time.Parse(freeTextDateLayout, raw)
	default:
		return Date{}, fmt.Errorf("unknown log type %q", logType)
	}
	if err != nil {
		return Date{}, fmt.Errorf("parse %s log date %q: %w", logType, raw, err)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ReviewBody is the spoiler-aware rendering of a review's text.
type ReviewBody struct {
	Content string
	Spoiler bool
}

func isSpoilerWarning(p *goquery.Selection) bool {
	if class, exists := p.Attr("class"); exists &&
		strings.Contains(strings.ToLower(class), "spoiler") {
		return true
	}
	return false
}

// ReviewText joins a review's paragraphs with newlines. When the first
// paragraph is the site's spoiler warning it is excluded from the content and
// the spoiler flag is set; the warning paragraph is boilerplate, not review
// text.
func ReviewText(sel *goquery.Selection) ReviewBody {
	var paragraphs []string
	spoiler := false
	sel.Find("p").Each(func(i int, p *goquery.Selection) {
		if i == 0 && isSpoilerWarning(p) {
			spoiler = true
			return
		}
		text := htmlutil.CleanText(p)
		if text == "" {
			return
		}
		paragraphs = append(paragraphs, text)
	})
	return ReviewBody{
		Content: strings.Join(paragraphs, "\n"),
		Spoiler: spoiler,
	}
}

// JSONLD pulls the structured script payload film pages embed in a
// type="application/ld+json" script tag, which is wrapped in CDATA comment
// markers.
func JSONLD(doc *goquery.Document) (map[string]any, error) {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return nil, fmt.Errorf("no ld+json script tag on page")
	}
	text := script.Text()
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "/* <![CDATA[ */")
	text = strings.TrimSuffix(text, "/* ]]> */")

	var payload map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload)
	if err != nil {
		return nil, fmt.Errorf("unmarshal ld+json payload: %w", err)
	}
	return payload, nil
}
