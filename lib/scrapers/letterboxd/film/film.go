// Package film scrapes a single film's page into a full profile record.
package film

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
)

var tracer = otel.Tracer("scrapers/letterboxd/film")

// CastMember is one actor credit with the role they played, when billed.
type CastMember struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Profile extends the summary record with everything the film page itself
// exposes. Constructed once per fetch and immutable after that; refresh by
// fetching again.
type Profile struct {
	extract.MovieSummary

	Directors         []string            `json:"directors,omitempty"`
	Genres            []string            `json:"genres,omitempty"`
	Cast              []CastMember        `json:"cast,omitempty"`
	Crew              map[string][]string `json:"crew,omitempty"`
	Description       string              `json:"description,omitempty"`
	Runtime           *int                `json:"runtime,omitempty"`
	Tagline           string              `json:"tagline,omitempty"`
	Trailer           string              `json:"trailer,omitempty"`
	AlternativeTitles []string            `json:"alternative_titles,omitempty"`
	Poster            string              `json:"poster,omitempty"`
	Banner            string              `json:"banner,omitempty"`
}

type Client struct {
	Core *core.Client

	memo *runtimeCache
}

type ClientOptions struct {
	// optional badger DB for memoizing runtime lookups, usually in-memory
	RuntimeMemo *badger.DB
}

func NewClient(coreClient *core.Client, opts ClientOptions) Client {
	c := Client{Core: coreClient}
	if opts.RuntimeMemo != nil {
		c.memo = &runtimeCache{db: opts.RuntimeMemo, baseUrl: coreClient.BaseUrl}
	}
	return c
}

var runtimeRegex = regexp.MustCompile(`(\d+)\s*min`)

// Details is the film page's details tab, which the site also serves as a
// standalone document for widgets that load it lazily.
type Details struct {
	AlternativeTitles []string `json:"alternative_titles,omitempty"`
	Studios           []string `json:"studios,omitempty"`
	Countries         []string `json:"countries,omitempty"`
}

// Details fetches and extracts the details tab for a slug.
func (c Client) Details(ctx context.Context, slug string) (Details, error) {
	ctx, span := tracer.Start(ctx, "client:Details")
	defer span.End()

	doc, err := c.Core.FetchDocument(ctx, core.FilmDetailsPath(slug))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch details page")
		return Details{}, err
	}
	return extractDetails(doc), nil
}

func extractDetails(doc *goquery.Document) Details {
	d := Details{
		AlternativeTitles: splitTitles(
			htmlutil.CleanText(doc.Find("div.text-indentedlist p").First())),
	}
	doc.Find(`a[href*="/studio/"]`).Each(func(_ int, a *goquery.Selection) {
		if name := htmlutil.CleanText(a); name != "" {
			d.Studios = append(d.Studios, name)
		}
	})
	doc.Find(`a[href*="/films/country/"]`).Each(func(_ int, a *goquery.Selection) {
		if name := htmlutil.CleanText(a); name != "" {
			d.Countries = append(d.Countries, name)
		}
	})
	return d
}

func splitTitles(joined string) []string {
	var titles []string
	for _, title := range strings.Split(joined, ",") {
		title = strings.TrimSpace(title)
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// Profile fetches and extracts the film page for a slug.
func (c Client) Profile(ctx context.Context, slug string) (Profile, error) {
	ctx, span := tracer.Start(ctx, "client:Profile")
	defer span.End()

	doc, err := c.Core.FetchDocument(ctx, core.FilmPath(slug))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch film page")
		return Profile{}, err
	}

	p, err := extractProfile(doc, c.Core, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract film profile")
		return Profile{}, err
	}
	return p, nil
}

// Runtime looks up just the runtime for a slug, going through the memo when
// one is configured.
func (c Client) Runtime(ctx context.Context, slug string) (*int, error) {
	ctx, span := tracer.Start(ctx, "client:Runtime")
	defer span.End()

	if c.memo != nil {
		minutes, err := c.memo.get(slug)
		if err == nil {
			span.SetStatus(codes.Ok, "MEMO HIT")
			return &minutes, nil
		}
		if !errors.Is(err, errRuntimeNotMemoized) {
			span.RecordError(err)
		}
	}

	profile, err := c.Profile(ctx, slug)
	if err != nil {
		return nil, err
	}
	if profile.Runtime == nil {
		return nil, nil
	}

	if c.memo != nil {
		if err := c.memo.set(slug, *profile.Runtime); err != nil {
			span.RecordError(err)
		}
	}
	return profile.Runtime, nil
}

func extractProfile(doc *goquery.Document, coreClient *core.Client, slug string) (Profile, error) {
	p := Profile{}
	p.Slug = slug
	p.URL = core.FilmURL(coreClient.BaseUrl, slug)

	// the poster component is the page's one required container: every film
	// page has it, and it carries the site-assigned id
	summary, ok := extract.FilmIdentity(doc.Selection, coreClient.BaseUrl)
	if !ok {
		return Profile{}, &core.ExtractError{What: "film poster component for " + slug}
	}
	p.ID = summary.ID
	if summary.Name != "" {
		p.Name = summary.Name
	}

	if payload, err := extract.JSONLD(doc); err == nil {
		applyJSONLD(&p, payload)
	}

	if p.Name == "" {
		p.Name = htmlutil.CleanText(doc.Find("section.production-masthead h1").First())
	}
	if p.Year == nil {
		yearText := htmlutil.CleanText(doc.Find("div.releaseyear a").First())
		if year, err := strconv.Atoi(yearText); err == nil {
			p.Year = &year
		}
	}

	p.Tagline = htmlutil.CleanText(doc.Find("h4.tagline").First())
	p.Description = htmlutil.CleanText(doc.Find("div.truncate p").First())
	if p.Description == "" {
		p.Description = doc.Find(`meta[name="description"]`).AttrOr("content", "")
	}

	footerText := htmlutil.CleanText(doc.Find("p.text-link").First())
	if groups := runtimeRegex.FindStringSubmatch(footerText); len(groups) == 2 {
		if minutes, err := strconv.Atoi(groups[1]); err == nil {
			p.Runtime = &minutes
		}
	}

	doc.Find("div.cast-list a.text-slug").Each(func(_ int, a *goquery.Selection) {
		member := CastMember{
			Name: htmlutil.CleanText(a),
			Role: a.AttrOr("title", ""),
		}
		if member.Name == "" {
			return
		}
		p.Cast = append(p.Cast, member)
	})

	doc.Find("#tab-crew > div").Each(func(_ int, div *goquery.Selection) {
		job := htmlutil.CleanText(div.Find("h3 span.crewrole").First())
		if job == "" {
			return
		}
		var names []string
		div.Find("a.text-slug").Each(func(_ int, a *goquery.Selection) {
			if name := htmlutil.CleanText(a); name != "" {
				names = append(names, name)
			}
		})
		if len(names) == 0 {
			return
		}
		if p.Crew == nil {
			p.Crew = map[string][]string{}
		}
		p.Crew[job] = names
		if strings.EqualFold(job, "Director") || strings.EqualFold(job, "Directors") {
			p.Directors = names
		}
	})

	var tabGenres []string
	doc.Find("#tab-genres a.text-slug").Each(func(_ int, a *goquery.Selection) {
		if genre := htmlutil.CleanText(a); genre != "" {
			tabGenres = append(tabGenres, genre)
		}
	})
	if len(tabGenres) > 0 {
		p.Genres = tabGenres
	}

	p.AlternativeTitles = splitTitles(
		htmlutil.CleanText(doc.Find("#tab-details div.text-indentedlist p").First()))

	if trailer, exists := doc.Find("p.trailer-link a").First().Attr("href"); exists {
		p.Trailer = strings.TrimPrefix(trailer, "//")
	}
	if banner, exists := doc.Find("#backdrop").First().Attr("data-backdrop"); exists {
		p.Banner = banner
	}

	return p, nil
}

func applyJSONLD(p *Profile, payload map[string]any) {
	if name, ok := payload["name"].(string); ok && name != "" {
		p.Name = name
	}
	if image, ok := payload["image"].(string); ok {
		p.Poster = image
	}
	switch genres := payload["genre"].(type) {
	case string:
		p.Genres = []string{genres}
	case []any:
		for _, g := range genres {
			if s, ok := g.(string); ok {
				p.Genres = append(p.Genres, s)
			}
		}
	}
	if directors, ok := payload["director"].([]any); ok {
		for _, d := range directors {
			entry, ok := d.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := entry["name"].(string); ok {
				p.Directors = append(p.Directors, name)
			}
		}
	}
}
