package scraper

import (
	"context"

	"bskyscraper/pkg/bluesky"
)

// SearchClient fetches one page of search results
type SearchClient interface {
	SearchPosts(ctx context.Context, token string, params bluesky.QueryParams) (*bluesky.SearchResponse, error)
}

// Client is the part of the Bluesky API the scraper depends on
type Client interface {
	SearchClient
	CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error)
	PrepareQuery(ctx context.Context, token string, params bluesky.QueryParams) bluesky.QueryParams
}

// LinkValidator reports whether a post link still resolves to content
type LinkValidator interface {
	Validate(ctx context.Context, url string) (bool, error)
}
