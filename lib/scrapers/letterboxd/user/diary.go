package user

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

const diaryPageSize = 50

// DiaryEntry is one logged viewing. LogID is the site's per-viewing id, so
// the same film showing up several times is expected, not an error.
type DiaryEntry struct {
	LogID     string               `json:"log_id"`
	Movie     extract.MovieSummary `json:"movie"`
	Date      extract.Date         `json:"date"`
	Rewatched bool                 `json:"rewatched"`
	Rating    *int                 `json:"rating,omitempty"`
	Liked     bool                 `json:"liked"`
	Reviewed  bool                 `json:"reviewed"`
	Runtime   *int                 `json:"runtime,omitempty"`
	Page      int                  `json:"page"`
}

type DiaryResult struct {
	Entries  *pagination.Collection[DiaryEntry] `json:"entries"`
	Count    int                                `json:"count"`
	LastPage int                                `json:"last_page"`
}

type DiaryOptions struct {
	// narrow the diary to a year/month/day window; zero values widen it
	Year  int
	Month int
	Day   int
	// fetch exactly this page instead of walking from page 1
	Page int
	// stop after this many entries; 0 means all
	MaxEntries int
	// fill missing runtimes with per-film lookups after collection
	EnrichRuntimes bool
	// worker bound for enrichment; <= 1 runs sequentially
	MaxWorkers int
}

// Diary walks a member's diary pages. A failure on any page aborts the whole
// collection.
func (c Client) Diary(ctx context.Context, username string, opts DiaryOptions) (DiaryResult, error) {
	ctx, span := tracer.Start(ctx, "client:Diary")
	defer span.End()

	path := func(page int) string {
		if opts.Year > 0 {
			return core.DiaryForDatePath(username, opts.Year, opts.Month, opts.Day, page)
		}
		return core.DiaryPath(username, page)
	}

	collectOpts := pagination.Options{
		PageSize:  diaryPageSize,
		MaxItems:  opts.MaxEntries,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	entries, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[DiaryEntry], error) {
			doc, err := c.Core.FetchDocument(ctx, path(page))
			if err != nil {
				return nil, err
			}
			return extractDiaryPage(doc, c.Core, page), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect diary")
		return DiaryResult{}, err
	}

	if opts.EnrichRuntimes {
		c.enrichRuntimes(ctx, entries, opts.MaxWorkers)
	}

	return DiaryResult{
		Entries:  entries,
		Count:    entries.Len(),
		LastPage: lastPage,
	}, nil
}

func extractDiaryPage(doc *goquery.Document, coreClient *core.Client, page int) []pagination.Keyed[DiaryEntry] {
	var batch []pagination.Keyed[DiaryEntry]
	doc.Find("tr.diary-entry-row").Each(func(_ int, row *goquery.Selection) {
		logID := row.AttrOr("data-viewing-id", "")
		if logID == "" {
			// some markup generations only carry "viewing:12345"
			objectID := row.AttrOr("data-object-id", "")
			logID = strings.TrimPrefix(objectID, "viewing:")
		}
		if logID == "" {
			return
		}

		movie, ok := extract.FilmIdentity(row.Find("td.td-film-details"), coreClient.BaseUrl)
		if !ok {
			return
		}

		entry := DiaryEntry{
			LogID: logID,
			Movie: movie,
			Page:  page,
		}

		if date, ok := diaryDateFromDayLink(row); ok {
			entry.Date = date
		}
		// the rewatch cell carries icon-status-off on first watches
		rewatchCell := row.Find("td.td-rewatch").First()
		entry.Rewatched = rewatchCell.Length() > 0 && !rewatchCell.HasClass("icon-status-off")
		entry.Rating = extract.Rating(row.Find("td.td-rating"))
		entry.Liked = row.Find("td.td-like span.icon-liked").Length() > 0
		entry.Reviewed = row.Find("td.td-review a").Length() > 0

		batch = append(batch, pagination.Keyed[DiaryEntry]{Key: logID, Item: entry})
	})
	return batch
}

// the day cell links to /user/films/diary/for/YYYY/MM/DD/
func diaryDateFromDayLink(row *goquery.Selection) (extract.Date, bool) {
	href, exists := row.Find("td.td-day a").First().Attr("href")
	if !exists {
		return extract.Date{}, false
	}
	segments := strings.Split(strings.Trim(href, "/"), "/")
	if len(segments) < 3 {
		return extract.Date{}, false
	}
	tail := segments[len(segments)-3:]
	year, err1 := strconv.Atoi(tail[0])
	month, err2 := strconv.Atoi(tail[1])
	day, err3 := strconv.Atoi(tail[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return extract.Date{}, false
	}
	return extract.Date{Year: year, Month: month, Day: day}, true
}

// enrichRuntimes fills nil runtimes with per-film lookups, optionally fanned
// out over a bounded worker pool. Lookups that still miss leave the runtime
// nil; one warning covers them all.
func (c Client) enrichRuntimes(ctx context.Context, entries *pagination.Collection[DiaryEntry], maxWorkers int) {
	type lookup struct {
		key  string
		slug string
	}
	var pending []lookup
	entries.Each(func(key string, entry DiaryEntry) {
		if entry.Runtime == nil && entry.Movie.Slug != "" {
			pending = append(pending, lookup{key: key, slug: entry.Movie.Slug})
		}
	})
	if len(pending) == 0 {
		return
	}

	if maxWorkers <= 1 {
		maxWorkers = 1
	}
	sem := make(chan struct{}, maxWorkers)

	var lock sync.Mutex
	missed := 0
	wg := sync.WaitGroup{}
	for _, l := range pending {
		wg.Add(1)
		sem <- struct{}{}
		go func(l lookup) {
			defer wg.Done()
			defer func() { <-sem }()

			runtime, err := c.Film.Runtime(ctx, l.slug)

			lock.Lock()
			defer lock.Unlock()
			if err != nil || runtime == nil {
				missed++
				return
			}
			entry, ok := entries.Get(l.key)
			if !ok {
				return
			}
			entry.Runtime = runtime
			entries.Put(l.key, entry)
		}(l)
	}
	wg.Wait()

	if missed > 0 {
		slog.Warn("some diary entries are missing runtime data",
			"missing", missed, "total", entries.Len())
	}
}
