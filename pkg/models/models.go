package models

// CSVHeader is the column order of a saved dataset
var CSVHeader = []string{"author", "content", "created_at", "post_link"}

// PostRecord is the flattened form of a search result.
// PostLink is the natural key: two records with the same link are the same post.
type PostRecord struct {
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	PostLink  string `json:"post_link"`
}

// Row returns the record as CSV fields in CSVHeader order
func (p PostRecord) Row() []string {
	return []string{p.Author, p.Content, p.CreatedAt, p.PostLink}
}
