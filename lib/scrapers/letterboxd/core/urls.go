package core

import (
	"fmt"
	"net/url"
	"strings"
)

// Well-known path templates. Everything is relative to the client's base url
// so an alternate mirror/host can be swapped in through ClientOptions.

func FilmPath(slug string) string {
	return fmt.Sprintf("/film/%s/", slug)
}

func FilmDetailsPath(slug string) string {
	return fmt.Sprintf("/film/%s/details/", slug)
}

func UserPath(username string) string {
	return fmt.Sprintf("/%s/", username)
}

func UserFilmsPath(username string, page int) string {
	return fmt.Sprintf("/%s/films/page/%d/", username, page)
}

func DiaryPath(username string, page int) string {
	return fmt.Sprintf("/%s/films/diary/page/%d/", username, page)
}

// DiaryForDatePath narrows the diary to a single day. Zero month/day widen
// the window to the whole year or month.
func DiaryForDatePath(username string, year, month, day, page int) string {
	segment := fmt.Sprintf("for/%d", year)
	if month > 0 {
		segment += fmt.Sprintf("/%02d", month)
		if day > 0 {
			segment += fmt.Sprintf("/%02d", day)
		}
	}
	return fmt.Sprintf("/%s/films/diary/%s/page/%d/", username, segment, page)
}

func ReviewsPath(username string, page int) string {
	return fmt.Sprintf("/%s/films/reviews/page/%d/", username, page)
}

func WatchlistPath(username, filterSegments string, page int) string {
	if filterSegments != "" {
		return fmt.Sprintf("/%s/watchlist/%s/page/%d/", username, filterSegments, page)
	}
	return fmt.Sprintf("/%s/watchlist/page/%d/", username, page)
}

func UserListsPath(username string, page int) string {
	return fmt.Sprintf("/%s/lists/page/%d/", username, page)
}

func ListPath(owner, slug string, page int) string {
	return fmt.Sprintf("/%s/list/%s/page/%d/", owner, slug, page)
}

func TagsPath(username, category string) string {
	return fmt.Sprintf("/%s/tags/%s/", username, category)
}

func FollowingPath(username string, page int) string {
	return fmt.Sprintf("/%s/following/page/%d/", username, page)
}

func FollowersPath(username string, page int) string {
	return fmt.Sprintf("/%s/followers/page/%d/", username, page)
}

// SearchPath builds /s/search/[filter/]<query>/page/N, optionally with the
// ?adult flag.
func SearchPath(filter, query string, page int, adult bool) string {
	var path string
	if filter != "" {
		path = fmt.Sprintf("/s/search/%s/%s/page/%d/", filter, url.PathEscape(query), page)
	} else {
		path = fmt.Sprintf("/s/search/%s/page/%d/", url.PathEscape(query), page)
	}
	if adult {
		path += "?adult"
	}
	return path
}

// FilmURL resolves a slug to its canonical absolute film page url.
func FilmURL(base *url.URL, slug string) string {
	ref := &url.URL{Path: FilmPath(slug)}
	return base.ResolveReference(ref).String()
}

// JoinValues renders multi-value filter values the way the site expects,
// e.g. ["horror","comedy"] -> "horror+comedy".
func JoinValues(values []string) string {
	return strings.Join(values, "+")
}
