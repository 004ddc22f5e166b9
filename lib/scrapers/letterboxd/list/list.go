// Package list scrapes a single published list: its metadata plus every film
// on it.
package list

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
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

var tracer = otel.Tracer("scrapers/letterboxd/list")

const entriesPageSize = 100

type Metadata struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	Owner       string   `json:"owner"`
	DateCreated string   `json:"date_created,omitempty"`
	DateUpdated string   `json:"date_updated,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Count       int      `json:"count"`
}

type Result struct {
	Metadata Metadata                                     `json:"metadata"`
	Movies   *pagination.Collection[extract.MovieSummary] `json:"movies"`
	LastPage int                                          `json:"last_page"`
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

type Options struct {
	Page     int
	MaxItems int
}

// Get fetches a list's metadata off its first page and walks every entry
// page.
func (c Client) Get(ctx context.Context, owner, slug string, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "client:Get")
	defer span.End()

	var meta Metadata
	metaExtracted := false

	collectOpts := pagination.Options{
		PageSize:  entriesPageSize,
		MaxItems:  opts.MaxItems,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	movies, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[extract.MovieSummary], error) {
			doc, err := c.Core.FetchDocument(ctx, core.ListPath(owner, slug, page))
			if err != nil {
				return nil, err
			}
			if !metaExtracted {
				meta, err = extractMetadata(doc, owner, slug)
				if err != nil {
					return nil, err
				}
				metaExtracted = true
			}
			return extractEntriesPage(doc, c.Core), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect list")
		return Result{}, err
	}

	if meta.Count == 0 {
		meta.Count = movies.Len()
	}

	return Result{
		Metadata: meta,
		Movies:   movies,
		LastPage: lastPage,
	}, nil
}

func extractMetadata(doc *goquery.Document, owner, slug string) (Metadata, error) {
	// the list container div is required: it carries the site-assigned id
	container := doc.Find("div.list-page, section.list-page, div[data-film-list-id]").First()
	id := container.AttrOr("data-film-list-id", "")
	if id == "" {
		return Metadata{}, &core.ExtractError{What: "list container for " + owner + "/" + slug}
	}

	meta := Metadata{
		ID:    id,
		Slug:  slug,
		Owner: owner,
		Title: htmlutil.CleanText(doc.Find("h1.title-1").First()),
	}
	meta.Description = strings.Join(
		htmlutil.Paragraphs(doc.Find("div.list-title-intro div.body-text, div.list-meta div.body-text").First()),
		"\n",
	)
	meta.DateCreated = doc.Find("span.published time").First().AttrOr("datetime", "")
	meta.DateUpdated = doc.Find("span.updated time").First().AttrOr("datetime", "")

	doc.Find("ul.tags li a").Each(func(_ int, a *goquery.Selection) {
		if tag := htmlutil.CleanText(a); tag != "" {
			meta.Tags = append(meta.Tags, tag)
		}
	})

	countText := htmlutil.CleanText(doc.Find("p.list-count, span.js-list-count").First())
	countFields := strings.Fields(strings.ReplaceAll(countText, ",", ""))
	if len(countFields) > 0 {
		if n, err := strconv.Atoi(countFields[0]); err == nil {
			meta.Count = n
		}
	}

	return meta, nil
}

func extractEntriesPage(doc *goquery.Document, coreClient *core.Client) []pagination.Keyed[extract.MovieSummary] {
	var batch []pagination.Keyed[extract.MovieSummary]
	doc.Find("ul.poster-list li, ul.js-list-entries li").Each(func(_ int, li *goquery.Selection) {
		summary, ok := extract.FilmIdentity(li, coreClient.BaseUrl)
		if !ok {
			return
		}
		batch = append(batch, pagination.Keyed[extract.MovieSummary]{
			Key:  summary.ID,
			Item: summary,
		})
	})
	return batch
}
