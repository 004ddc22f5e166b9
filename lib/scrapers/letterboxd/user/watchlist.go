package user

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

const watchlistPageSize = 28

// WatchlistFilters narrow a watchlist by path segments. A leading "-" on a
// genre excludes it; multiple values for one key are "+"-joined.
type WatchlistFilters struct {
	Genres []string `json:"genre,omitempty"`
	Decade string   `json:"decade,omitempty"`
	Year   string   `json:"year,omitempty"`
}

// PathSegments renders the filters as the site's key/value1+value2/... path
// form.
func (f WatchlistFilters) PathSegments() string {
	var segments []string
	if len(f.Genres) > 0 {
		segments = append(segments, "genre", core.JoinValues(f.Genres))
	}
	if f.Decade != "" {
		segments = append(segments, "decade", f.Decade)
	}
	if f.Year != "" {
		segments = append(segments, "year", f.Year)
	}
	return strings.Join(segments, "/")
}

func (f WatchlistFilters) empty() bool {
	return len(f.Genres) == 0 && f.Decade == "" && f.Year == ""
}

// WatchlistEntry numbers each film so the most recently added one is number
// 1.
type WatchlistEntry struct {
	extract.MovieSummary

	No   int `json:"no"`
	Page int `json:"page"`
}

// WatchlistResult distinguishes a private watchlist (Available false) from a
// visible empty one (Available true, Count 0).
type WatchlistResult struct {
	Available bool                                   `json:"available"`
	Count     int                                    `json:"count"`
	Data      *pagination.Collection[WatchlistEntry] `json:"data"`
	LastPage  int                                    `json:"last_page"`
}

type WatchlistOptions struct {
	Filters  WatchlistFilters
	Page     int
	MaxItems int
}

// Watchlist walks a member's watchlist. A private watchlist short-circuits
// to an unavailable result instead of failing; every other fetch error still
// aborts the collection.
func (c Client) Watchlist(ctx context.Context, username string, opts WatchlistOptions) (WatchlistResult, error) {
	ctx, span := tracer.Start(ctx, "client:Watchlist")
	defer span.End()

	filterSegments := opts.Filters.PathSegments()

	headerTotal := -1
	collectOpts := pagination.Options{
		PageSize:  watchlistPageSize,
		MaxItems:  opts.MaxItems,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	entries, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[WatchlistEntry], error) {
			doc, err := c.Core.FetchDocument(ctx, core.WatchlistPath(username, filterSegments, page))
			if err != nil {
				return nil, err
			}
			if headerTotal < 0 {
				headerTotal = watchlistHeaderCount(doc)
			}
			return extractWatchlistPage(doc, c.Core, page), nil
		})
	if err != nil {
		var private *core.PrivateRouteError
		if errors.As(err, &private) {
			span.SetStatus(codes.Ok, "watchlist is private")
			return WatchlistResult{
				Available: false,
				Data:      pagination.NewCollection[WatchlistEntry](),
			}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect watchlist")
		return WatchlistResult{}, err
	}

	renumberWatchlist(entries, headerTotal, !opts.Filters.empty())

	return WatchlistResult{
		Available: true,
		Count:     entries.Len(),
		Data:      entries,
		LastPage:  lastPage,
	}, nil
}

// the page header carries an authoritative total; it is only used for
// renumbering, never to cut pagination short
func watchlistHeaderCount(doc *goquery.Document) int {
	text := htmlutil.CleanText(doc.Find("span.js-watchlist-count").First())
	if count, ok := parseCount(text); ok {
		return count
	}
	return -1
}

func extractWatchlistPage(doc *goquery.Document, coreClient *core.Client, page int) []pagination.Keyed[WatchlistEntry] {
	var batch []pagination.Keyed[WatchlistEntry]
	doc.Find("ul.poster-list li").Each(func(_ int, li *goquery.Selection) {
		summary, ok := extract.FilmIdentity(li, coreClient.BaseUrl)
		if !ok {
			return
		}
		batch = append(batch, pagination.Keyed[WatchlistEntry]{
			Key:  summary.ID,
			Item: WatchlistEntry{MovieSummary: summary, Page: page},
		})
	})
	return batch
}

// renumberWatchlist assigns reverse sequence numbers: the listing runs oldest
// to newest, and the newest addition gets number 1. With filters applied the
// header total covers the unfiltered list, so numbering falls back to the
// filtered count actually collected.
func renumberWatchlist(entries *pagination.Collection[WatchlistEntry], headerTotal int, filtered bool) {
	total := entries.Len()
	if !filtered && headerTotal >= entries.Len() {
		total = headerTotal
	}
	index := 0
	entries.Each(func(key string, entry WatchlistEntry) {
		entry.No = total - index
		entries.Put(key, entry)
		index++
	})
}
