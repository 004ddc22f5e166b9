// Package search scrapes the site search, which mixes films, members,
// reviews, lists, tags, people, studios, stories and journal articles into
// one result stream.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/pagination"
)

var tracer = otel.Tracer("scrapers/letterboxd/search")

const searchPageSize = 20

// Kind tags which variant of a search result is populated.
type Kind string

const (
	KindFilm     Kind = "film"
	KindMember   Kind = "member"
	KindReview   Kind = "review"
	KindList     Kind = "list"
	KindTag      Kind = "tag"
	KindActor    Kind = "actor"
	KindDirector Kind = "director"
	KindStudio   Kind = "studio"
	KindStory    Kind = "story"
	KindJournal  Kind = "journal"
)

// Filter narrows the search to one result kind via a path segment.
type Filter string

const (
	FilterFilms     Filter = "films"
	FilterMembers   Filter = "members"
	FilterReviews   Filter = "reviews"
	FilterLists     Filter = "lists"
	FilterTags      Filter = "tags"
	FilterCast      Filter = "cast-crew"
	FilterStudios   Filter = "studios"
	FilterStories   Filter = "stories"
	FilterJournal   Filter = "journal"
	FilterNoneGiven Filter = ""
)

type MemberResult struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

type NamedResult struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type ListResult struct {
	Title string `json:"title"`
	Owner string `json:"owner,omitempty"`
	Count int    `json:"count"`
	URL   string `json:"url"`
}

type ReviewResult struct {
	Movie    extract.MovieSummary `json:"movie"`
	Reviewer string               `json:"reviewer"`
	Rating   *int                 `json:"rating,omitempty"`
	URL      string               `json:"url,omitempty"`
}

// Result is a tagged union: Type selects which single variant field is
// populated.
type Result struct {
	Type Kind `json:"type"`

	Film   *extract.MovieSummary `json:"film,omitempty"`
	Member *MemberResult         `json:"member,omitempty"`
	Review *ReviewResult         `json:"review,omitempty"`
	List   *ListResult           `json:"list,omitempty"`
	Tag    *NamedResult          `json:"tag,omitempty"`
	Person *NamedResult          `json:"person,omitempty"`
	Studio *NamedResult          `json:"studio,omitempty"`
	Story  *NamedResult          `json:"story,omitempty"`
}

type Response struct {
	Available bool     `json:"available"`
	Query     string   `json:"query"`
	Filter    Filter   `json:"filter"`
	Results   []Result `json:"results"`
	Count     int      `json:"count"`
	LastPage  int      `json:"last_page"`
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

type Options struct {
	Filter   Filter
	Adult    bool
	Page     int
	MaxItems int
}

// Search walks result pages for a query. No matches at all yields an
// unavailable response, not an error.
func (c Client) Search(ctx context.Context, query string, opts Options) (Response, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	collectOpts := pagination.Options{
		PageSize:  searchPageSize,
		MaxItems:  opts.MaxItems,
		StartPage: opts.Page,
		MaxPage:   opts.Page,
	}
	collected, lastPage, err := pagination.Collect(ctx, collectOpts,
		func(ctx context.Context, page int) ([]pagination.Keyed[Result], error) {
			path := core.SearchPath(string(opts.Filter), query, page, opts.Adult)
			doc, err := c.Core.FetchDocument(ctx, path)
			if err != nil {
				return nil, err
			}
			return c.extractResultsPage(doc), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect search results")
		return Response{}, err
	}

	var results []Result
	collected.Each(func(_ string, r Result) {
		results = append(results, r)
	})

	return Response{
		Available: len(results) > 0,
		Query:     query,
		Filter:    opts.Filter,
		Results:   results,
		Count:     len(results),
		LastPage:  lastPage,
	}, nil
}

func (c Client) extractResultsPage(doc *goquery.Document) []pagination.Keyed[Result] {
	var batch []pagination.Keyed[Result]
	doc.Find("ul.results li.search-result").Each(func(i int, li *goquery.Selection) {
		result, key, ok := c.extractResult(li)
		if !ok {
			return
		}
		batch = append(batch, pagination.Keyed[Result]{Key: key, Item: result})
	})
	return batch
}

func (c Client) resolve(href string) string {
	parsed, err := c.Core.BaseUrl.Parse(href)
	if err != nil {
		return href
	}
	return parsed.String()
}

// each result li carries a modifier class naming its kind
func (c Client) extractResult(li *goquery.Selection) (Result, string, bool) {
	switch {
	case li.HasClass("-production"):
		summary, ok := extract.FilmIdentity(li, c.Core.BaseUrl)
		if !ok {
			return Result{}, "", false
		}
		return Result{Type: KindFilm, Film: &summary}, key(KindFilm, summary.ID), true

	case li.HasClass("-profile"):
		link := li.Find("a.name, h3 a").First()
		href := link.AttrOr("href", "")
		username := strings.Trim(href, "/")
		if username == "" {
			return Result{}, "", false
		}
		return Result{Type: KindMember, Member: &MemberResult{
			Username:    username,
			DisplayName: htmlutil.CleanText(link),
			URL:         c.resolve(href),
		}}, key(KindMember, username), true

	case li.HasClass("-review"):
		movie, ok := extract.FilmIdentity(li, c.Core.BaseUrl)
		if !ok {
			return Result{}, "", false
		}
		review := ReviewResult{
			Movie:    movie,
			Reviewer: htmlutil.CleanText(li.Find("a.name, strong.name").First()),
			Rating:   extract.Rating(li),
		}
		if href, exists := li.Find("a.context").First().Attr("href"); exists {
			review.URL = c.resolve(href)
		}
		return Result{Type: KindReview, Review: &review}, key(KindReview, review.URL+movie.ID), true

	case li.HasClass("-list"):
		link := li.Find("h2 a, h3 a").First()
		href := link.AttrOr("href", "")
		if href == "" {
			return Result{}, "", false
		}
		listResult := ListResult{
			Title: htmlutil.CleanText(link),
			Owner: htmlutil.CleanText(li.Find("a.name").First()),
			URL:   c.resolve(href),
		}
		if count, ok := countFromText(htmlutil.CleanText(li.Find("span.value").First())); ok {
			listResult.Count = count
		}
		return Result{Type: KindList, List: &listResult}, key(KindList, href), true

	case li.HasClass("-tag"):
		return namedResult(c, li, KindTag)

	case li.HasClass("-actor"):
		return namedResult(c, li, KindActor)

	case li.HasClass("-director"), li.HasClass("-contributor"):
		return namedResult(c, li, KindDirector)

	case li.HasClass("-studio"):
		return namedResult(c, li, KindStudio)

	case li.HasClass("-story"):
		return namedResult(c, li, KindStory)

	case li.HasClass("-journal"):
		return namedResult(c, li, KindJournal)
	}

	return Result{}, "", false
}

func namedResult(c Client, li *goquery.Selection, kind Kind) (Result, string, bool) {
	link := li.Find("a").First()
	href := link.AttrOr("href", "")
	name := htmlutil.CleanText(link)
	if name == "" {
		return Result{}, "", false
	}
	named := &NamedResult{Name: name, URL: c.resolve(href)}
	result := Result{Type: kind}
	switch kind {
	case KindTag:
		result.Tag = named
	case KindActor, KindDirector:
		result.Person = named
	case KindStudio:
		result.Studio = named
	case KindStory, KindJournal:
		result.Story = named
	default:
		return Result{}, "", false
	}
	return result, key(kind, href), true
}

func key(kind Kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

func countFromText(text string) (int, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	var n int
	_, err := fmt.Sscanf(fields[0], "%d", &n)
	if err != nil {
		return 0, false
	}
	return n, true
}
