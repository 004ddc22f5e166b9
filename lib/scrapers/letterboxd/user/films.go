package user

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

const filmsPageSize = 72

type FilmsResult struct {
	Movies   *pagination.Collection[extract.MovieSummary] `json:"movies"`
	Count    int                                          `json:"count"`
	LastPage int                                          `json:"last_page"`
}

type FilmsOptions struct {
	Page     int
	MaxItems int
}

// Films walks every film a member has logged, with their ratings on the raw
// 1-10 scale.
func (c Client) Films(ctx context.Context, username string, opts FilmsOptions) (FilmsResult, error) {
	ctx, span := tracer.Start(ctx, "client:Films")
	defer span.End()

	collectOpts := pagination.Options{
		PageSize:  filmsPageSize,
		MaxItems:  opts.MaxItems,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	movies, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[extract.MovieSummary], error) {
			doc, err := c.Core.FetchDocument(ctx, core.UserFilmsPath(username, page))
			if err != nil {
				return nil, err
			}
			return extractFilmsPage(doc, c.Core), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect films")
		return FilmsResult{}, err
	}

	return FilmsResult{
		Movies:   movies,
		Count:    movies.Len(),
		LastPage: lastPage,
	}, nil
}

func extractFilmsPage(doc *goquery.Document, coreClient *core.Client) []pagination.Keyed[extract.MovieSummary] {
	var batch []pagination.Keyed[extract.MovieSummary]
	doc.Find("ul.poster-list li").Each(func(_ int, li *goquery.Selection) {
		summary, ok := extract.FilmIdentity(li, coreClient.BaseUrl)
		if !ok {
			return
		}
		summary.Rating = extract.Rating(li)
		batch = append(batch, pagination.Keyed[extract.MovieSummary]{
			Key:  summary.ID,
			Item: summary,
		})
	})
	return batch
}
