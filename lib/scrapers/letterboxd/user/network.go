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

const networkPageSize = 25

// Member is one row of a following/followers table.
type Member struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	URL         string `json:"url"`
}

type NetworkResult struct {
	Members  *pagination.Collection[Member] `json:"members"`
	Count    int                            `json:"count"`
	LastPage int                            `json:"last_page"`
}

type NetworkOptions struct {
	Page     int
	MaxItems int
}

// Following walks the members this user follows.
func (c Client) Following(ctx context.Context, username string, opts NetworkOptions) (NetworkResult, error) {
	return c.network(ctx, username, opts, core.FollowingPath)
}

// Followers walks the members following this user.
func (c Client) Followers(ctx context.Context, username string, opts NetworkOptions) (NetworkResult, error) {
	return c.network(ctx, username, opts, core.FollowersPath)
}

func (c Client) network(ctx context.Context, username string, opts NetworkOptions, path func(string, int) string) (NetworkResult, error) {
	ctx, span := tracer.Start(ctx, "client:network")
	defer span.End()

	collectOpts := pagination.Options{
		PageSize:  networkPageSize,
		MaxItems:  opts.MaxItems,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	members, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[Member], error) {
			doc, err := c.Core.FetchDocument(ctx, path(username, page))
			if err != nil {
				return nil, err
			}
			return extractNetworkPage(doc, c.Core), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect network")
		return NetworkResult{}, err
	}

	return NetworkResult{
		Members:  members,
		Count:    members.Len(),
		LastPage: lastPage,
	}, nil
}

func extractNetworkPage(doc *goquery.Document, coreClient *core.Client) []pagination.Keyed[Member] {
	var batch []pagination.Keyed[Member]
	doc.Find("td.table-person, div.person-summary").Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find("a.name").First()
		href := link.AttrOr("href", "")
		memberUsername := strings.Trim(href, "/")
		if memberUsername == "" {
			return
		}

		member := Member{
			Username:    memberUsername,
			DisplayName: htmlutil.CleanText(link),
			Avatar:      cell.Find("a.avatar img, span.avatar img").First().AttrOr("src", ""),
		}
		if parsed, err := coreClient.BaseUrl.Parse(href); err == nil {
			member.URL = parsed.String()
		}

		batch = append(batch, pagination.Keyed[Member]{Key: memberUsername, Item: member})
	})
	return batch
}
