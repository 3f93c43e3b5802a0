package ui

import (
	"fmt"
	"sync"
	"time"
)

// SearchProgress tracks one scrape run from first page to saved dataset
type SearchProgress struct {
	mu        sync.Mutex
	query     string
	pages     int
	fetched   int
	kept      int
	skipped   int
	rejected  int
	startTime time.Time
}

// NewSearchProgress creates a tracker for query
func NewSearchProgress(query string) *SearchProgress {
	return &SearchProgress{query: query, startTime: time.Now()}
}

// PageFetched records a page of n raw posts
func (p *SearchProgress) PageFetched(n int) {
	p.mu.Lock()
	p.pages++
	p.fetched += n
	p.mu.Unlock()
	p.PrintProgress()
}

// PostKept records a post that made it into the dataset
func (p *SearchProgress) PostKept() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kept++
}

// PostSkipped records a post dropped for missing fields
func (p *SearchProgress) PostSkipped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

// LinkRejected records a post dropped by link validation
func (p *SearchProgress) LinkRejected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejected++
}

// Counts returns pages, fetched, kept, skipped and rejected totals
func (p *SearchProgress) Counts() (pages, fetched, kept, skipped, rejected int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages, p.fetched, p.kept, p.skipped, p.rejected
}

// Elapsed returns the time since tracking started
func (p *SearchProgress) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// PrintProgress rewrites the current status line
func (p *SearchProgress) PrintProgress() {
	if IsQuietMode() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(Out, "\r%s %s | pages: %d | posts: %d",
		Green("[FETCHING]"), Cyan(p.query), p.pages, p.fetched)
}

// Summary returns a one-line report of the run
func (p *SearchProgress) Summary() string {
	pages, fetched, kept, skipped, rejected := p.Counts()
	s := fmt.Sprintf("%d pages, %d posts fetched, %d kept", pages, fetched, kept)
	if skipped > 0 {
		s += fmt.Sprintf(", %d skipped", skipped)
	}
	if rejected > 0 {
		s += fmt.Sprintf(", %d without content", rejected)
	}
	return s + fmt.Sprintf(" in %s", p.Elapsed().Round(time.Millisecond))
}
