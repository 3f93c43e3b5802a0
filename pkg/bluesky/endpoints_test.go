package bluesky

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXRPCURL(t *testing.T) {
	assert.Equal(t, "https://bsky.social/xrpc/app.bsky.feed.searchPosts", XRPCURL("https://bsky.social", SearchPostsMethod))
	assert.Equal(t, "http://localhost:2583/xrpc/x.y", XRPCURL("http://localhost:2583/", "x.y"))
}

func TestQueryParamsValues(t *testing.T) {
	t.Run("omits empty filters", func(t *testing.T) {
		v := QueryParams{Query: "bluesky"}.Values()

		assert.Equal(t, "bluesky", v.Get("q"))
		assert.Equal(t, "25", v.Get("limit"))
		for _, key := range []string{"sort", "since", "until", "mentions", "author", "lang", "domain", "url", "tag", "cursor"} {
			_, present := v[key]
			assert.False(t, present, key)
		}
	})

	t.Run("encodes every filter", func(t *testing.T) {
		v := QueryParams{
			Query:    "go",
			Sort:     "top",
			Since:    "2024-01-01T00:00:00Z",
			Until:    "2024-02-01T00:00:00Z",
			Mentions: "did:plc:m",
			Author:   "did:plc:a",
			Lang:     "en",
			Domain:   "go.dev",
			URL:      "https://go.dev",
			Tags:     []string{"golang", "", "gophers"},
			Limit:    100,
			Cursor:   "abc",
		}.Values()

		assert.Equal(t, "top", v.Get("sort"))
		assert.Equal(t, "2024-01-01T00:00:00Z", v.Get("since"))
		assert.Equal(t, "2024-02-01T00:00:00Z", v.Get("until"))
		assert.Equal(t, "did:plc:m", v.Get("mentions"))
		assert.Equal(t, "did:plc:a", v.Get("author"))
		assert.Equal(t, "en", v.Get("lang"))
		assert.Equal(t, "go.dev", v.Get("domain"))
		assert.Equal(t, "https://go.dev", v.Get("url"))
		assert.Equal(t, []string{"golang", "gophers"}, v["tag"])
		assert.Equal(t, "100", v.Get("limit"))
		assert.Equal(t, "abc", v.Get("cursor"))
	})
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultSearchLimit, ClampLimit(0))
	assert.Equal(t, DefaultSearchLimit, ClampLimit(-3))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 100, ClampLimit(100))
	assert.Equal(t, 100, ClampLimit(101))
}

func TestPostLink(t *testing.T) {
	assert.Equal(t, "3kabc", PostIDFromURI("at://did:plc:a/app.bsky.feed.post/3kabc"))
	assert.Equal(t, "plain", PostIDFromURI("plain"))
	assert.Equal(t, "https://bsky.app/profile/alice.bsky.social/post/3kabc",
		PostLink("alice.bsky.social", "3kabc"))
}

func TestIsDID(t *testing.T) {
	assert.True(t, IsDID("did:plc:abc"))
	assert.True(t, IsDID("did:web:example.com"))
	assert.False(t, IsDID("alice.bsky.social"))
}
