package bluesky

// RawPost is a post view as returned by searchPosts. Fields the extractor
// requires are pointers so a missing key can be told apart from an empty one.
type RawPost struct {
	URI       *string      `json:"uri"`
	CID       string       `json:"cid"`
	Author    *Author      `json:"author"`
	Record    *PostContent `json:"record"`
	IndexedAt *string      `json:"indexedAt"`

	ReplyCount  int `json:"replyCount"`
	RepostCount int `json:"repostCount"`
	LikeCount   int `json:"likeCount"`
}

// Author is the profile summary embedded in a post view
type Author struct {
	DID         string  `json:"did"`
	Handle      *string `json:"handle"`
	DisplayName string  `json:"displayName"`
}

// PostContent is the app.bsky.feed.post record body
type PostContent struct {
	Type      string   `json:"$type"`
	Text      *string  `json:"text"`
	CreatedAt string   `json:"createdAt"`
	Langs     []string `json:"langs"`
}

// SearchResponse is the searchPosts output. An empty Cursor means no more pages.
type SearchResponse struct {
	Posts     []RawPost `json:"posts"`
	Cursor    string    `json:"cursor"`
	HitsTotal *int      `json:"hitsTotal"`
}

// Session is the subset of createSession output the scraper uses
type Session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	DID        string `json:"did"`
	Handle     string `json:"handle"`
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type resolveHandleResponse struct {
	DID string `json:"did"`
}

// xrpcError is the error body XRPC servers return alongside non-2xx statuses
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
