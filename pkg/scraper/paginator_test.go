package scraper

import (
	"context"
	"testing"

	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []bluesky.RawPost) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, bluesky.PostIDFromURI(*p.URI))
	}
	return ids
}

func TestPaginatorCollectsPagesInReverseOrder(t *testing.T) {
	client := &mockClient{pages: pagedResponses(3, 2)}
	p := NewPaginator(client, "jwt", 0, logger.NewNopLogger())

	posts := p.Collect(context.Background(), bluesky.QueryParams{Query: "golang", Limit: 2})

	require.Len(t, posts, 6)
	assert.Equal(t, []string{"p3-1", "p3-2", "p2-1", "p2-2", "p1-1", "p1-2"}, postIDs(posts))

	require.Len(t, client.calls, 3)
	assert.Equal(t, "", client.calls[0].Cursor)
	assert.Equal(t, "cursor-1", client.calls[1].Cursor)
	assert.Equal(t, "cursor-2", client.calls[2].Cursor)
	for _, token := range client.tokens {
		assert.Equal(t, "jwt", token)
	}
}

func TestPaginatorStopsWithoutCursor(t *testing.T) {
	client := &mockClient{pages: pagedResponses(1, 4)}
	p := NewPaginator(client, "jwt", 0, logger.NewNopLogger())

	posts := p.Collect(context.Background(), bluesky.QueryParams{Query: "golang"})

	assert.Len(t, posts, 4)
	assert.Len(t, client.calls, 1)
}

func TestPaginatorReturnsPartialResultsOnError(t *testing.T) {
	log := logger.NewTestLogger()
	client := &mockClient{pages: pagedResponses(3, 2), failAt: 2}
	p := NewPaginator(client, "jwt", 0, log)

	posts := p.Collect(context.Background(), bluesky.QueryParams{Query: "golang"})

	assert.Equal(t, []string{"p1-1", "p1-2"}, postIDs(posts))
	assert.Len(t, client.calls, 2)
	assert.True(t, log.HasMessage("Error fetching posts"))
}

func TestPaginatorErrorOnFirstPage(t *testing.T) {
	client := &mockClient{pages: pagedResponses(2, 2), failAt: 1}
	p := NewPaginator(client, "jwt", 0, logger.NewNopLogger())

	posts := p.Collect(context.Background(), bluesky.QueryParams{Query: "golang"})

	assert.Empty(t, posts)
}

func TestPaginatorMaxPages(t *testing.T) {
	log := logger.NewTestLogger()
	client := &mockClient{pages: pagedResponses(5, 2)}
	p := NewPaginator(client, "jwt", 2, log)

	posts := p.Collect(context.Background(), bluesky.QueryParams{Query: "golang"})

	assert.Equal(t, []string{"p2-1", "p2-2", "p1-1", "p1-2"}, postIDs(posts))
	assert.Len(t, client.calls, 2)
	assert.True(t, log.HasMessage("Page limit reached"))
}

func TestPaginatorOnPage(t *testing.T) {
	client := &mockClient{pages: pagedResponses(3, 2)}
	p := NewPaginator(client, "jwt", 0, logger.NewNopLogger())

	var sizes []int
	p.OnPage(func(n int) { sizes = append(sizes, n) })
	p.Collect(context.Background(), bluesky.QueryParams{Query: "golang"})

	assert.Equal(t, []int{2, 2, 2}, sizes)
}
