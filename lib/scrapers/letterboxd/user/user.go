// Package user scrapes member-facing pages: profile, diary, reviews,
// watchlist, film listings, lists, tags and the follower graph.
package user

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/film"
)

var tracer = otel.Tracer("scrapers/letterboxd/user")

type Client struct {
	Core *core.Client
	Film film.Client
}

func NewClient(coreClient *core.Client, filmClient film.Client) Client {
	return Client{Core: coreClient, Film: filmClient}
}

// Profile is a member's profile page. WatchlistLength is nil when the
// watchlist is private, which is "unknown/forbidden", not the same thing as a
// visible empty watchlist of length 0.
type Profile struct {
	ID              string                 `json:"id"`
	Username        string                 `json:"username"`
	DisplayName     string                 `json:"display_name"`
	Bio             string                 `json:"bio,omitempty"`
	Location        string                 `json:"location,omitempty"`
	Website         string                 `json:"website,omitempty"`
	Avatar          string                 `json:"avatar,omitempty"`
	Stats           map[string]int         `json:"stats"`
	Favorites       []extract.MovieSummary `json:"favorites"`
	WatchlistLength *int                   `json:"watchlist_length"`
}

// Profile fetches and extracts a member's profile page.
func (c Client) Profile(ctx context.Context, username string) (Profile, error) {
	ctx, span := tracer.Start(ctx, "client:Profile")
	defer span.End()

	doc, err := c.Core.FetchDocument(ctx, core.UserPath(username))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch profile page")
		return Profile{}, err
	}

	p, err := extractProfile(doc, c.Core, username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract profile")
		return Profile{}, err
	}
	return p, nil
}

func parseCount(text string) (int, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, false
	}
	fields := strings.Fields(text)
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

func extractProfile(doc *goquery.Document, coreClient *core.Client, username string) (Profile, error) {
	p := Profile{Username: username, Stats: map[string]int{}}

	header := doc.Find("section#profile-header, div.profile-summary").First()
	p.ID = header.AttrOr("data-person-id", "")

	p.DisplayName = htmlutil.CleanText(doc.Find("h1.title-1, span.displayname").First())
	if p.DisplayName == "" {
		p.DisplayName = username
	}

	p.Avatar = doc.Find("div.profile-avatar img, span.avatar img").First().AttrOr("src", "")

	bio := htmlutil.Paragraphs(doc.Find("div.bio").First())
	p.Bio = strings.Join(bio, "\n")

	p.Location = htmlutil.CleanText(doc.Find("div.profile-metadata .metadatum .location").First())
	if website, exists := doc.Find("div.profile-metadata a.website").First().Attr("href"); exists {
		p.Website = website
	}

	// the stats header is the profile's one required container: every valid
	// profile renders it, so its absence means we are not looking at a
	// profile page at all
	stats := doc.Find("h4.profile-statistic")
	if stats.Length() == 0 {
		return Profile{}, &core.ExtractError{What: "profile statistics header for " + username}
	}
	stats.Each(func(_ int, stat *goquery.Selection) {
		name := strings.ToLower(htmlutil.CleanText(stat.Find("span.definition").First()))
		name = strings.ReplaceAll(name, " ", "_")
		value, ok := parseCount(htmlutil.CleanText(stat.Find("span.value").First()))
		if !ok || name == "" {
			return
		}
		p.Stats[name] = value
	})

	// no favorites section just means no favorites, not an error
	doc.Find("section#favourites li, section.favourites li").Each(func(_ int, li *goquery.Selection) {
		summary, ok := extract.FilmIdentity(li, coreClient.BaseUrl)
		if !ok {
			return
		}
		p.Favorites = append(p.Favorites, summary)
	})

	// nil when the watchlist link is hidden, i.e. a private watchlist
	watchlistText := htmlutil.CleanText(doc.Find("a.js-watchlist-count, section.watchlist-aside a.all-link").First())
	if length, ok := parseCount(watchlistText); ok {
		p.WatchlistLength = &length
	}

	return p, nil
}
