package user

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

const listsPageSize = 12

// ListSummary is one entry on a member's lists page; fetching the list
// itself goes through the list package.
type ListSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
	URL         string `json:"url"`
}

type ListsResult struct {
	Lists    *pagination.Collection[ListSummary] `json:"lists"`
	Count    int                                 `json:"count"`
	LastPage int                                 `json:"last_page"`
}

type ListsOptions struct {
	Page     int
	MaxItems int
}

// Lists walks a member's published lists.
func (c Client) Lists(ctx context.Context, username string, opts ListsOptions) (ListsResult, error) {
	ctx, span := tracer.Start(ctx, "client:Lists")
	defer span.End()

	collectOpts := pagination.Options{
		PageSize:  listsPageSize,
		MaxItems:  opts.MaxItems,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	lists, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[ListSummary], error) {
			doc, err := c.Core.FetchDocument(ctx, core.UserListsPath(username, page))
			if err != nil {
				return nil, err
			}
			return extractListsPage(doc, c.Core), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect lists")
		return ListsResult{}, err
	}

	return ListsResult{
		Lists:    lists,
		Count:    lists.Len(),
		LastPage: lastPage,
	}, nil
}

func extractListsPage(doc *goquery.Document, coreClient *core.Client) []pagination.Keyed[ListSummary] {
	var batch []pagination.Keyed[ListSummary]
	doc.Find("section.list-summary").Each(func(_ int, section *goquery.Selection) {
		id := section.AttrOr("data-film-list-id", "")
		if id == "" {
			return
		}

		titleLink := section.Find("h2 a").First()
		href := titleLink.AttrOr("href", "")
		slug := ""
		if segments := strings.Split(strings.Trim(href, "/"), "/"); len(segments) >= 3 {
			// /owner/list/slug/
			slug = segments[len(segments)-1]
		}

		summary := ListSummary{
			ID:          id,
			Title:       htmlutil.CleanText(titleLink),
			Slug:        slug,
			Description: strings.Join(htmlutil.Paragraphs(section.Find("div.body-text").First()), "\n"),
		}
		if count, ok := parseCount(htmlutil.CleanText(section.Find("span.value").First())); ok {
			summary.Count = count
		}
		if href != "" {
			ref := coreClient.BaseUrl
			if parsed, err := ref.Parse(href); err == nil {
				summary.URL = parsed.String()
			}
		}

		batch = append(batch, pagination.Keyed[ListSummary]{Key: id, Item: summary})
	})
	return batch
}
