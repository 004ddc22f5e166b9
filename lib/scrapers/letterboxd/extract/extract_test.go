package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func baseUrl(t *testing.T) *url.URL {
	base, err := url.Parse("https://letterboxd.com")
	require.NoError(t, err)
	return base
}

func TestFilmIdentityReactComponent(t *testing.T) {
	doc := parseFragment(t, `
		<li>
			<div class="react-component poster"
				data-film-id="51568"
				data-item-slug="the-matrix"
				data-item-name="The Matrix (1999)">
			</div>
		</li>`)

	summary, ok := FilmIdentity(doc.Find("li"), baseUrl(t))
	require.True(t, ok)
	require.Equal(t, "51568", summary.ID)
	require.Equal(t, "the-matrix", summary.Slug)
	require.Equal(t, "The Matrix", summary.Name)
	require.NotNil(t, summary.Year)
	require.Equal(t, 1999, *summary.Year)
	require.Equal(t, "https://letterboxd.com/film/the-matrix/", summary.URL)
}

func TestFilmIdentityPosterFallback(t *testing.T) {
	doc := parseFragment(t, `
		<li>
			<div class="film-poster" data-film-id="51568" data-film-slug="the-matrix">
				<img alt="The Matrix" src="poster.jpg"/>
			</div>
		</li>`)

	summary, ok := FilmIdentity(doc.Find("li"), baseUrl(t))
	require.True(t, ok)
	require.Equal(t, "51568", summary.ID)
	require.Equal(t, "the-matrix", summary.Slug)
	require.Equal(t, "The Matrix", summary.Name)
	require.Nil(t, summary.Year)
}

func TestFilmIdentityPosterTargetLink(t *testing.T) {
	doc := parseFragment(t, `
		<li>
			<div class="film-poster" data-film-id="99" data-target-link="/film/blade-runner/">
				<img alt="Blade Runner"/>
			</div>
		</li>`)

	summary, ok := FilmIdentity(doc.Find("li"), baseUrl(t))
	require.True(t, ok)
	require.Equal(t, "blade-runner", summary.Slug)
}

func TestFilmIdentityMissing(t *testing.T) {
	doc := parseFragment(t, `<li><span>nothing here</span></li>`)
	_, ok := FilmIdentity(doc.Find("li"), baseUrl(t))
	require.False(t, ok)
}

func TestRating(t *testing.T) {
	doc := parseFragment(t, `
		<td><span class="rating rated-9">★★★★½</span></td>`)
	rating := Rating(doc.Find("td"))
	require.NotNil(t, rating)
	require.Equal(t, 9, *rating)

	doc = parseFragment(t, `<td><span class="rating"></span></td>`)
	require.Nil(t, Rating(doc.Find("td")))

	doc = parseFragment(t, `<td></td>`)
	require.Nil(t, Rating(doc.Find("td")))
}

func TestStars(t *testing.T) {
	nine := 9
	summary := MovieSummary{Rating: &nine}
	stars := summary.Stars()
	require.NotNil(t, stars)
	require.Equal(t, 4.5, *stars)

	require.Nil(t, MovieSummary{}.Stars())
}

func TestParseLogDate(t *testing.T) {
	testCases := []struct {
		logType  LogType
		raw      string
		expected Date
	}{
		{LogWatched, "02 Jan 2024", Date{Year: 2024, Month: 1, Day: 2}},
		{LogRewatched, "15 Dec 2023", Date{Year: 2023, Month: 12, Day: 15}},
		{LogAdded, "2024-01-01T05:45:00Z", Date{Year: 2024, Month: 1, Day: 1}},
		// fractional seconds are common in the site's datetime attributes
		{LogAdded, "2024-01-01T05:45:00.268Z", Date{Year: 2024, Month: 1, Day: 1}},
	}
	for _, test := range testCases {
		date, err := ParseLogDate(test.logType, test.raw)
		require.NoError(t, err, "input: %q", test.raw)
		require.Equal(t, test.expected, date, "input: %q", test.raw)
	}
}

func TestParseLogDateRejectsWrongFormat(t *testing.T) {
	// dispatch is on log type, never on format sniffing
	_, err := ParseLogDate(LogWatched, "2024-01-01T05:45:00Z")
	require.Error(t, err)

	_, err = ParseLogDate(LogAdded, "02 Jan 2024")
	require.Error(t, err)

	_, err = ParseLogDate(LogType("Bogus"), "02 Jan 2024")
	require.Error(t, err)
}

func TestReviewText(t *testing.T) {
	doc := parseFragment(t, `
		<div class="body-text">
			<p>First paragraph.</p>
			<p>Second paragraph.</p>
		</div>`)
	body := ReviewText(doc.Find("div.body-text"))
	require.False(t, body.Spoiler)
	require.Equal(t, "First paragraph.\nSecond paragraph.", body.Content)
}

func TestReviewTextSpoiler(t *testing.T) {
	doc := parseFragment(t, `
		<div class="body-text">
			<p class="contains-spoilers">This review may contain spoilers.</p>
			<p>The twist is great.</p>
		</div>`)
	body := ReviewText(doc.Find("div.body-text"))
	require.True(t, body.Spoiler)
	require.Equal(t, "The twist is great.", body.Content)
}

func TestReviewTextSpoilerOnlyFirstParagraph(t *testing.T) {
	// a spoiler-classed paragraph later in the body is review text, not the
	// site's warning banner
	doc := parseFragment(t, `
		<div class="body-text">
			<p>Setup.</p>
			<p class="spoiler-note">Spoilery detail.</p>
		</div>`)
	body := ReviewText(doc.Find("div.body-text"))
	require.False(t, body.Spoiler)
	require.Equal(t, "Setup.\nSpoilery detail.", body.Content)
}

func TestFilmIdentityIdempotent(t *testing.T) {
	// extractors are pure functions of the document
	doc := parseFragment(t, `
		<li>
			<div class="react-component"
				data-film-id="51568"
				data-item-slug="the-matrix"
				data-item-name="The Matrix (1999)">
			</div>
		</li>`)

	first, ok := FilmIdentity(doc.Find("li"), baseUrl(t))
	require.True(t, ok)
	second, ok := FilmIdentity(doc.Find("li"), baseUrl(t))
	require.True(t, ok)
	require.Equal(t, first, second)
}

func TestJSONLD(t *testing.T) {
	doc := parseFragment(t, `
		<html><head>
		<script type="application/ld+json">
		/* <![CDATA[ */
		{"name": "The Matrix", "genre": ["Action", "Science Fiction"]}
		/* ]]> */
		</script>
		</head></html>`)

	payload, err := JSONLD(doc)
	require.NoError(t, err)
	require.Equal(t, "The Matrix", payload["name"])
}

func TestJSONLDMissing(t *testing.T) {
	doc := parseFragment(t, `<html><head></head></html>`)
	_, err := JSONLD(doc)
	require.Error(t, err)
}
