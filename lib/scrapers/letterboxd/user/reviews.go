package user

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

const reviewsPageSize = 12

// Review is one review tile. Content excludes the leading spoiler-warning
// paragraph when Spoiler is set.
type Review struct {
	LogID   string               `json:"log_id"`
	Movie   extract.MovieSummary `json:"movie"`
	Type    extract.LogType      `json:"type"`
	Rating  *int                 `json:"rating,omitempty"`
	Content string               `json:"content"`
	Spoiler bool                 `json:"spoiler"`
	Date    extract.Date         `json:"date"`
	Page    int                  `json:"page"`
}

type ReviewsResult struct {
	Reviews  *pagination.Collection[Review] `json:"reviews"`
	Count    int                            `json:"count"`
	LastPage int                            `json:"last_page"`
}

type ReviewsOptions struct {
	Page       int
	MaxReviews int
}

// Reviews walks a member's review pages.
func (c Client) Reviews(ctx context.Context, username string, opts ReviewsOptions) (ReviewsResult, error) {
	ctx, span := tracer.Start(ctx, "client:Reviews")
	defer span.End()

	collectOpts := pagination.Options{
		PageSize:  reviewsPageSize,
		MaxItems:  opts.MaxReviews,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	reviews, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[Review], error) {
			doc, err := c.Core.FetchDocument(ctx, core.ReviewsPath(username, page))
			if err != nil {
				return nil, err
			}
			return extractReviewsPage(doc, c.Core, page), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect reviews")
		return ReviewsResult{}, err
	}

	return ReviewsResult{
		Reviews:  reviews,
		Count:    reviews.Len(),
		LastPage: lastPage,
	}, nil
}

func extractReviewsPage(doc *goquery.Document, coreClient *core.Client, page int) []pagination.Keyed[Review] {
	var batch []pagination.Keyed[Review]
	doc.Find("div.review-tile, li.film-detail").Each(func(_ int, tile *goquery.Selection) {
		objectID := tile.AttrOr("data-object-id", "")
		logID := strings.TrimPrefix(objectID, "viewing:")
		if logID == "" {
			return
		}

		movie, ok := extract.FilmIdentity(tile, coreClient.BaseUrl)
		if !ok {
			return
		}

		review := Review{
			LogID:  logID,
			Movie:  movie,
			Rating: extract.Rating(tile),
			Page:   page,
		}

		review.Type = reviewLogType(tile)
		if date, err := reviewDate(tile, review.Type); err == nil {
			review.Date = date
		}

		body := extract.ReviewText(tile.Find("div.body-text").First())
		review.Content = body.Content
		review.Spoiler = body.Spoiler

		batch = append(batch, pagination.Keyed[Review]{Key: logID, Item: review})
	})
	return batch
}

func reviewLogType(tile *goquery.Selection) extract.LogType {
	context := strings.ToLower(htmlutil.CleanText(tile.Find("div.attribution span.context").First()))
	switch {
	case strings.Contains(context, "rewatched"):
		return extract.LogRewatched
	case strings.Contains(context, "added"):
		return extract.LogAdded
	default:
		return extract.LogWatched
	}
}

// Added logs carry an ISO datetime attribute, Watched/Rewatched logs carry
// free text; the dispatch is on log type, never on format sniffing.
func reviewDate(tile *goquery.Selection, logType extract.LogType) (extract.Date, error) {
	if logType == extract.LogAdded {
		raw := tile.Find("time").First().AttrOr("datetime", "")
		return extract.ParseLogDate(logType, raw)
	}
	dateSel := tile.Find("span.date span._nobr").First()
	if dateSel.Length() == 0 {
		dateSel = tile.Find("span.date").First()
	}
	return extract.ParseLogDate(logType, htmlutil.CleanText(dateSel))
}
