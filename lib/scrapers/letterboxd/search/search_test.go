package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/telemetry"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{
		BaseUrl:   server.URL,
		RateLimit: -1,
		Sleep:     func(time.Duration) {},
	})
	require.NoError(t, err)
	return NewClient(coreClient)
}

const mixedResultsFixture = `
<html><body><ul class="results">
<li class="search-result -production">
	<div class="react-component" data-film-id="51568" data-item-slug="the-matrix" data-item-name="The Matrix (1999)"></div>
</li>
<li class="search-result -profile">
	<h3><a class="name" href="/matrixfan/">Matrix Fan</a></h3>
</li>
<li class="search-result -review">
	<div class="react-component" data-film-id="51568" data-item-slug="the-matrix" data-item-name="The Matrix (1999)"></div>
	<a class="name" href="/bob/">Bob</a>
	<span class="rating rated-8"></span>
	<a class="context" href="/bob/film/the-matrix/"></a>
</li>
<li class="search-result -list">
	<h2><a href="/alice/list/simulations/">Simulations</a></h2>
	<a class="name" href="/alice/">Alice</a>
	<span class="value">14 films</span>
</li>
<li class="search-result -tag">
	<a href="/tag/cyberpunk/">cyberpunk</a>
</li>
<li class="search-result -actor">
	<a href="/actor/keanu-reeves/">Keanu Reeves</a>
</li>
<li class="search-result -studio">
	<a href="/studio/warner-bros/">Warner Bros.</a>
</li>
</ul></body></html>`

func TestSearch(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/letterboxd/search")
	defer cleanup()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/s/search/matrix/page/1/", r.URL.Path)
		w.Write([]byte(mixedResultsFixture))
	}))

	response, err := client.Search(context.Background(), "matrix", Options{})
	require.NoError(t, err)

	require.True(t, response.Available)
	require.Equal(t, "matrix", response.Query)
	require.Equal(t, 7, response.Count)

	film := response.Results[0]
	require.Equal(t, KindFilm, film.Type)
	require.NotNil(t, film.Film)
	require.Equal(t, "The Matrix", film.Film.Name)
	require.NotNil(t, film.Film.Year)
	require.Equal(t, 1999, *film.Film.Year)

	member := response.Results[1]
	require.Equal(t, KindMember, member.Type)
	require.NotNil(t, member.Member)
	require.Equal(t, "matrixfan", member.Member.Username)
	require.Equal(t, "Matrix Fan", member.Member.DisplayName)

	review := response.Results[2]
	require.Equal(t, KindReview, review.Type)
	require.NotNil(t, review.Review)
	require.Equal(t, "Bob", review.Review.Reviewer)
	require.NotNil(t, review.Review.Rating)
	require.Equal(t, 8, *review.Review.Rating)

	list := response.Results[3]
	require.Equal(t, KindList, list.Type)
	require.NotNil(t, list.List)
	require.Equal(t, "Simulations", list.List.Title)
	require.Equal(t, "Alice", list.List.Owner)
	require.Equal(t, 14, list.List.Count)

	require.Equal(t, KindTag, response.Results[4].Type)
	require.Equal(t, "cyberpunk", response.Results[4].Tag.Name)

	require.Equal(t, KindActor, response.Results[5].Type)
	require.Equal(t, "Keanu Reeves", response.Results[5].Person.Name)

	require.Equal(t, KindStudio, response.Results[6].Type)
	require.Equal(t, "Warner Bros.", response.Results[6].Studio.Name)
}

func TestSearchFiltered(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/s/search/films/matrix/page/1/", r.URL.Path)
		require.Equal(t, "adult", r.URL.RawQuery)
		w.Write([]byte(`<html><body><ul class="results">
			<li class="search-result -production">
				<div class="react-component" data-film-id="51568" data-item-slug="the-matrix" data-item-name="The Matrix (1999)"></div>
			</li>
		</ul></body></html>`))
	}))

	response, err := client.Search(context.Background(), "matrix", Options{
		Filter: FilterFilms,
		Adult:  true,
	})
	require.NoError(t, err)
	require.True(t, response.Available)
	require.Equal(t, FilterFilms, response.Filter)
	require.Equal(t, 1, response.Count)
}

func TestSearchNoResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><ul class="results"></ul></body></html>`))
	}))

	response, err := client.Search(context.Background(), "zzzzzz", Options{})
	require.NoError(t, err)
	require.False(t, response.Available)
	require.Equal(t, 0, response.Count)
}
