package bluesky

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the PDS entryway used when no base URL is configured
	DefaultBaseURL = "https://bsky.social"

	CreateSessionMethod = "com.atproto.server.createSession"
	ResolveHandleMethod = "com.atproto.identity.resolveHandle"
	SearchPostsMethod   = "app.bsky.feed.searchPosts"

	// PostLinkBase is the public web prefix for post links
	PostLinkBase = "https://bsky.app/profile"

	DefaultSearchLimit = 25
	MaxSearchLimit     = 100
)

// XRPCURL builds the endpoint URL for an XRPC method
func XRPCURL(baseURL, method string) string {
	return strings.TrimRight(baseURL, "/") + "/xrpc/" + method
}

// QueryParams are the searchPosts filters. Cursor is advanced by the paginator.
type QueryParams struct {
	Query    string
	Sort     string
	Since    string
	Until    string
	Mentions string
	Author   string
	Lang     string
	Domain   string
	URL      string
	Tags     []string
	Limit    int
	Cursor   string
}

// ClampLimit bounds a page size to what searchPosts accepts
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}

// Values encodes the parameters for the query string. Empty filters are omitted.
func (p QueryParams) Values() url.Values {
	v := url.Values{}
	v.Set("q", p.Query)
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("sort", p.Sort)
	set("since", p.Since)
	set("until", p.Until)
	set("mentions", p.Mentions)
	set("author", p.Author)
	set("lang", p.Lang)
	set("domain", p.Domain)
	set("url", p.URL)
	for _, tag := range p.Tags {
		if tag != "" {
			v.Add("tag", tag)
		}
	}
	v.Set("limit", strconv.Itoa(ClampLimit(p.Limit)))
	set("cursor", p.Cursor)
	return v
}

// Fields returns the parameters as log fields
func (p QueryParams) Fields() map[string]interface{} {
	fields := map[string]interface{}{"query": p.Query, "limit": ClampLimit(p.Limit)}
	for key, value := range map[string]string{
		"sort": p.Sort, "since": p.Since, "until": p.Until,
		"mentions": p.Mentions, "author": p.Author, "lang": p.Lang,
		"domain": p.Domain, "url": p.URL, "cursor": p.Cursor,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	if len(p.Tags) > 0 {
		fields["tags"] = p.Tags
	}
	return fields
}

// PostIDFromURI returns the record key, the last path segment of an at:// URI
func PostIDFromURI(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// PostLink builds the public web URL for a post
func PostLink(author, postID string) string {
	return PostLinkBase + "/" + author + "/post/" + postID
}

// IsDID reports whether s is already a DID rather than a handle
func IsDID(s string) bool {
	return strings.HasPrefix(s, "did:")
}
