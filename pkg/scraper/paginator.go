package scraper

import (
	"context"

	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/logger"
)

// Paginator follows searchPosts cursors until the results run out
type Paginator struct {
	client   SearchClient
	token    string
	maxPages int
	logger   logger.Logger
	onPage   func(posts int)
}

// NewPaginator creates a Paginator. maxPages <= 0 means no page limit.
func NewPaginator(client SearchClient, token string, maxPages int, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{client: client, token: token, maxPages: maxPages, logger: log}
}

// OnPage registers a callback invoked with the size of every fetched page
func (p *Paginator) OnPage(fn func(posts int)) {
	p.onPage = fn
}

// Collect fetches every page for params and returns all posts, most recently
// fetched page first: page N ++ ... ++ page 1. A failed request ends
// pagination and whatever was collected so far is returned.
func (p *Paginator) Collect(ctx context.Context, params bluesky.QueryParams) []bluesky.RawPost {
	var posts []bluesky.RawPost

	for page := 1; ; page++ {
		resp, err := p.client.SearchPosts(ctx, p.token, params)
		if err != nil {
			p.logger.WithError(err).ErrorWithFields("Error fetching posts", map[string]interface{}{
				"query":     params.Query,
				"page":      page,
				"collected": len(posts),
			})
			return posts
		}

		combined := make([]bluesky.RawPost, 0, len(resp.Posts)+len(posts))
		combined = append(combined, resp.Posts...)
		posts = append(combined, posts...)

		logger.LogPage(p.logger, params.Query, page, len(resp.Posts), len(posts), resp.Cursor != "")
		if p.onPage != nil {
			p.onPage(len(resp.Posts))
		}

		if resp.Cursor == "" {
			return posts
		}
		if p.maxPages > 0 && page >= p.maxPages {
			p.logger.InfoWithFields("Page limit reached", map[string]interface{}{
				"max_pages": p.maxPages,
				"collected": len(posts),
			})
			return posts
		}

		params.Cursor = resp.Cursor
	}
}
