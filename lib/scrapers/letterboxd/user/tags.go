package user

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"github.com/nmcassa/letterboxdpy-sub000/lib/htmlutil"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
)

// TagCategory selects which of a member's tag pages to read.
type TagCategory string

const (
	TagsFilms   TagCategory = "films"
	TagsDiary   TagCategory = "diary"
	TagsReviews TagCategory = "reviews"
	TagsLists   TagCategory = "lists"
)

var tagCategories = map[TagCategory]bool{
	TagsFilms:   true,
	TagsDiary:   true,
	TagsReviews: true,
	TagsLists:   true,
}

type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}

// Tags reads one category of a member's tags. Tag pages are not paginated; a
// member with no tags yields an empty slice.
func (c Client) Tags(ctx context.Context, username string, category TagCategory) ([]Tag, error) {
	ctx, span := tracer.Start(ctx, "client:Tags")
	defer span.End()

	if !tagCategories[category] {
		return nil, fmt.Errorf("unknown tag category %q", category)
	}

	doc, err := c.Core.FetchDocument(ctx, core.TagsPath(username, string(category)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tags page")
		return nil, err
	}

	var tags []Tag
	doc.Find("ul.tags-columns li, ul.tags li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		name := htmlutil.CleanText(link)
		if name == "" {
			return
		}
		tag := Tag{Name: name}
		if count, ok := parseCount(htmlutil.CleanText(li.Find("span.count").First())); ok {
			tag.Count = count
		} else {
			tag.Count = 1
		}
		if href, exists := link.Attr("href"); exists {
			if parsed, err := c.Core.BaseUrl.Parse(href); err == nil {
				tag.URL = parsed.String()
			}
		}
		tags = append(tags, tag)
	})

	return tags, nil
}

// AllTags reads every tag category for a member.
func (c Client) AllTags(ctx context.Context, username string) (map[TagCategory][]Tag, error) {
	out := map[TagCategory][]Tag{}
	for _, category := range []TagCategory{TagsFilms, TagsDiary, TagsReviews, TagsLists} {
		tags, err := c.Tags(ctx, username, category)
		if err != nil {
			return nil, err
		}
		out[category] = tags
	}
	return out, nil
}
