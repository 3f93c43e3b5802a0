package scraper

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"bskyscraper/pkg/bluesky"
	apperrors "bskyscraper/pkg/errors"
	"bskyscraper/pkg/ui"
)

func TestMain(m *testing.M) {
	ui.Out = io.Discard
	os.Exit(m.Run())
}

func strPtr(s string) *string { return &s }

// rawPost builds a well-formed post with id as the last URI segment
func rawPost(handle, id, text string) bluesky.RawPost {
	return bluesky.RawPost{
		URI:       strPtr("at://did:plc:abc123/app.bsky.feed.post/" + id),
		Author:    &bluesky.Author{Handle: strPtr(handle)},
		Record:    &bluesky.PostContent{Text: strPtr(text)},
		IndexedAt: strPtr("2024-05-01T10:00:00.000Z"),
	}
}

// pagedResponses returns n pages of size posts each, chained by cursors
func pagedResponses(n, size int) []*bluesky.SearchResponse {
	pages := make([]*bluesky.SearchResponse, 0, n)
	for p := 1; p <= n; p++ {
		resp := &bluesky.SearchResponse{}
		for i := 1; i <= size; i++ {
			resp.Posts = append(resp.Posts, rawPost("alice.test", fmt.Sprintf("p%d-%d", p, i), "text"))
		}
		if p < n {
			resp.Cursor = fmt.Sprintf("cursor-%d", p)
		}
		pages = append(pages, resp)
	}
	return pages
}

type mockClient struct {
	pages   []*bluesky.SearchResponse
	failAt  int // 1-based page that errors, 0 for none
	calls   []bluesky.QueryParams
	tokens  []string
	session *bluesky.Session
	authErr error
}

func (m *mockClient) SearchPosts(ctx context.Context, token string, params bluesky.QueryParams) (*bluesky.SearchResponse, error) {
	m.calls = append(m.calls, params)
	m.tokens = append(m.tokens, token)
	page := len(m.calls)
	if m.failAt == page {
		return nil, apperrors.New(apperrors.ErrorTypeNetwork, "connection reset")
	}
	if page > len(m.pages) {
		return &bluesky.SearchResponse{}, nil
	}
	return m.pages[page-1], nil
}

func (m *mockClient) CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	if m.session != nil {
		return m.session, nil
	}
	return &bluesky.Session{AccessJwt: "token-" + identifier, Handle: identifier}, nil
}

func (m *mockClient) PrepareQuery(ctx context.Context, token string, params bluesky.QueryParams) bluesky.QueryParams {
	params.Limit = bluesky.ClampLimit(params.Limit)
	return params
}

// mockValidator answers from a map of post link to result
type mockValidator struct {
	live  map[string]bool
	errs  map[string]error
	calls []string
}

func (m *mockValidator) Validate(ctx context.Context, url string) (bool, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return false, err
	}
	return m.live[url], nil
}
