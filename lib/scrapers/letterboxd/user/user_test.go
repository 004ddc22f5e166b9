package user

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/film"
	"github.com/nmcassa/letterboxdpy-sub000/lib/telemetry"
)

// newFixtureClient points a user client at a local fixture server with pacing
// and backoff waits disabled.
func newFixtureClient(t *testing.T, handler http.Handler) (Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{
		BaseUrl:   server.URL,
		RateLimit: -1,
		Sleep:     func(time.Duration) {},
	})
	require.NoError(t, err)

	return NewClient(coreClient, film.NewClient(coreClient, film.ClientOptions{})), server
}

func posterItem(id, slug, name string) string {
	return fmt.Sprintf(
		`<li><div class="react-component" data-film-id="%s" data-item-slug="%s" data-item-name="%s"></div></li>`,
		id, slug, name)
}

const profileFixture = `
<html><body>
<section id="profile-header" data-person-id="7241">
	<h1 class="title-1">Alice Example</h1>
	<div class="profile-avatar"><img src="https://img.example/avatar.jpg"/></div>
	<div class="bio"><p>Watches too many movies.</p></div>
	<div class="profile-metadata">
		<div class="metadatum"><span class="location">Berlin</span></div>
		<a class="website" href="https://alice.example">alice.example</a>
	</div>
</section>
<h4 class="profile-statistic"><span class="value">1,024</span> <span class="definition">Films</span></h4>
<h4 class="profile-statistic"><span class="value">37</span> <span class="definition">This year</span></h4>
<h4 class="profile-statistic"><span class="value">12</span> <span class="definition">Lists</span></h4>
<section id="favourites"><ul>
	<li><div class="react-component" data-film-id="51568" data-item-slug="the-matrix" data-item-name="The Matrix (1999)"></div></li>
</ul></section>
<a class="js-watchlist-count" href="/alice/watchlist/">250 films</a>
</body></html>`

func TestProfile(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/letterboxd/user")
	defer cleanup()

	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice/", r.URL.Path)
		w.Write([]byte(profileFixture))
	}))

	profile, err := client.Profile(context.Background(), "alice")
	require.NoError(t, err)

	require.Equal(t, "7241", profile.ID)
	require.Equal(t, "alice", profile.Username)
	require.Equal(t, "Alice Example", profile.DisplayName)
	require.Equal(t, "Watches too many movies.", profile.Bio)
	require.Equal(t, "Berlin", profile.Location)
	require.Equal(t, "https://alice.example", profile.Website)
	require.Equal(t, map[string]int{
		"films":     1024,
		"this_year": 37,
		"lists":     12,
	}, profile.Stats)

	require.Len(t, profile.Favorites, 1)
	require.Equal(t, "The Matrix", profile.Favorites[0].Name)

	require.NotNil(t, profile.WatchlistLength)
	require.Equal(t, 250, *profile.WatchlistLength)
}

func TestProfilePrivateWatchlist(t *testing.T) {
	// no watchlist link on the page means the length is unknown, not zero
	fixture := strings.Replace(profileFixture,
		`<a class="js-watchlist-count" href="/alice/watchlist/">250 films</a>`, "", 1)
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))

	profile, err := client.Profile(context.Background(), "alice")
	require.NoError(t, err)
	require.Nil(t, profile.WatchlistLength)
}

func TestProfileMissingStatsHeader(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1 class="title-1">Not a profile</h1></body></html>`))
	}))

	_, err := client.Profile(context.Background(), "alice")
	var extractErr *core.ExtractError
	require.ErrorAs(t, err, &extractErr)
}

func watchlistPage(items string, headerTotal int) string {
	return fmt.Sprintf(`
		<html><body>
		<span class="js-watchlist-count">%d films</span>
		<ul class="poster-list">%s</ul>
		</body></html>`, headerTotal, items)
}

func TestWatchlist(t *testing.T) {
	// 30 films over two pages, most recent addition last in the listing
	pages := map[string]string{}
	var page1 strings.Builder
	for i := 1; i <= watchlistPageSize; i++ {
		page1.WriteString(posterItem(fmt.Sprint(i), fmt.Sprintf("film-%d", i), fmt.Sprintf("Film %d", i)))
	}
	pages["/alice/watchlist/page/1/"] = watchlistPage(page1.String(), 30)
	pages["/alice/watchlist/page/2/"] = watchlistPage(
		posterItem("29", "film-29", "Film 29")+posterItem("30", "film-30", "Film 30"), 30)

	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		require.True(t, ok, "unexpected path %s", r.URL.Path)
		w.Write([]byte(body))
	}))

	result, err := client.Watchlist(context.Background(), "alice", WatchlistOptions{})
	require.NoError(t, err)

	require.True(t, result.Available)
	require.Equal(t, 30, result.Count)
	require.Equal(t, 2, result.LastPage)

	// the oldest addition is listed first and gets the highest number
	first, ok := result.Data.Get("1")
	require.True(t, ok)
	require.Equal(t, 30, first.No)
	require.Equal(t, 1, first.Page)

	newest, ok := result.Data.Get("30")
	require.True(t, ok)
	require.Equal(t, 1, newest.No)
	require.Equal(t, 2, newest.Page)
}

func TestWatchlistPrivate(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
	}))

	result, err := client.Watchlist(context.Background(), "alice", WatchlistOptions{})
	require.NoError(t, err)
	require.False(t, result.Available)
	require.Equal(t, 0, result.Data.Len())
}

func TestWatchlistVisiblyEmpty(t *testing.T) {
	// an empty public watchlist is available with count zero, unlike private
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(watchlistPage("", 0)))
	}))

	result, err := client.Watchlist(context.Background(), "alice", WatchlistOptions{})
	require.NoError(t, err)
	require.True(t, result.Available)
	require.Equal(t, 0, result.Count)
}

func TestWatchlistFilteredNumbering(t *testing.T) {
	// with filters the header still reports the unfiltered total, so the
	// numbering falls back to what was actually collected
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice/watchlist/genre/horror/page/1/", r.URL.Path)
		items := posterItem("1", "a", "A") + posterItem("2", "b", "B") + posterItem("3", "c", "C")
		w.Write([]byte(watchlistPage(items, 250)))
	}))

	result, err := client.Watchlist(context.Background(), "alice", WatchlistOptions{
		Filters: WatchlistFilters{Genres: []string{"horror"}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Count)

	entry, ok := result.Data.Get("1")
	require.True(t, ok)
	require.Equal(t, 3, entry.No)
	entry, ok = result.Data.Get("3")
	require.True(t, ok)
	require.Equal(t, 1, entry.No)
}

func TestWatchlistFilterSegments(t *testing.T) {
	filters := WatchlistFilters{
		Genres: []string{"horror", "-comedy"},
		Decade: "1990s",
		Year:   "1994",
	}
	require.Equal(t, "genre/horror+-comedy/decade/1990s/year/1994", filters.PathSegments())
	require.Equal(t, "", WatchlistFilters{}.PathSegments())
}

func TestFilms(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice/films/page/1/", r.URL.Path)
		w.Write([]byte(`
			<html><body><ul class="poster-list">
			<li>
				<div class="react-component" data-film-id="51568" data-item-slug="the-matrix" data-item-name="The Matrix (1999)"></div>
				<span class="rating rated-9"></span>
			</li>
			<li>
				<div class="react-component" data-film-id="406" data-item-slug="dune-2021" data-item-name="Dune (2021)"></div>
			</li>
			</ul></body></html>`))
	}))

	result, err := client.Films(context.Background(), "alice", FilmsOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)

	matrix, ok := result.Movies.Get("51568")
	require.True(t, ok)
	require.NotNil(t, matrix.Rating)
	require.Equal(t, 9, *matrix.Rating)
	require.NotNil(t, matrix.Stars())
	require.Equal(t, 4.5, *matrix.Stars())

	dune, ok := result.Movies.Get("406")
	require.True(t, ok)
	require.Nil(t, dune.Rating)
}

func TestLists(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice/lists/page/1/", r.URL.Path)
		w.Write([]byte(`
			<html><body>
			<section class="list-summary" data-film-list-id="998877">
				<h2><a href="/alice/list/comfort-films/">Comfort Films</a></h2>
				<div class="body-text"><p>Rainy day picks.</p></div>
				<span class="value">42 films</span>
			</section>
			</body></html>`))
	}))

	result, err := client.Lists(context.Background(), "alice", ListsOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)

	summary, ok := result.Lists.Get("998877")
	require.True(t, ok)
	require.Equal(t, "Comfort Films", summary.Title)
	require.Equal(t, "comfort-films", summary.Slug)
	require.Equal(t, "Rainy day picks.", summary.Description)
	require.Equal(t, 42, summary.Count)
}

func TestTags(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice/tags/films/", r.URL.Path)
		w.Write([]byte(`
			<html><body><ul class="tags-columns">
			<li><a href="/alice/tag/rewatch/films/">rewatch</a> <span class="count">17</span></li>
			<li><a href="/alice/tag/cinema/films/">cinema</a></li>
			</ul></body></html>`))
	}))

	tags, err := client.Tags(context.Background(), "alice", TagsFilms)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "rewatch", tags[0].Name)
	require.Equal(t, 17, tags[0].Count)
	// tags without a visible count appear at least once
	require.Equal(t, 1, tags[1].Count)
}

func TestTagsUnknownCategory(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := client.Tags(context.Background(), "alice", TagCategory("bogus"))
	require.Error(t, err)
}

func TestFollowing(t *testing.T) {
	client, _ := newFixtureClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alice/following/page/1/", r.URL.Path)
		w.Write([]byte(`
			<html><body><table><tr>
			<td class="table-person">
				<a class="avatar" href="/bob/"><img src="https://img.example/bob.jpg"/></a>
				<a class="name" href="/bob/">Bob</a>
			</td>
			</tr></table></body></html>`))
	}))

	result, err := client.Following(context.Background(), "alice", NetworkOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)

	bob, ok := result.Members.Get("bob")
	require.True(t, ok)
	require.Equal(t, "Bob", bob.DisplayName)
	require.Equal(t, "https://img.example/bob.jpg", bob.Avatar)
	require.True(t, strings.HasSuffix(bob.URL, "/bob/"))
}
