package scraper

import (
	"context"
	"fmt"
	"strings"

	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/models"
)

// ExtractPost flattens a raw post. When a required field is absent it
// returns the name of that field and a zero record.
func ExtractPost(post bluesky.RawPost) (models.PostRecord, string) {
	if post.Author == nil || post.Author.Handle == nil {
		return models.PostRecord{}, "author.handle"
	}
	if post.IndexedAt == nil {
		return models.PostRecord{}, "indexedAt"
	}
	if post.URI == nil {
		return models.PostRecord{}, "uri"
	}

	// encoding/csv reads quoted CRLF back as LF, so store the LF form
	content := ""
	if post.Record != nil && post.Record.Text != nil {
		content = strings.ReplaceAll(*post.Record.Text, "\r\n", "\n")
	}

	handle := *post.Author.Handle
	return models.PostRecord{
		Author:    handle,
		Content:   content,
		CreatedAt: *post.IndexedAt,
		PostLink:  bluesky.PostLink(handle, bluesky.PostIDFromURI(*post.URI)),
	}, ""
}

// Extractor turns raw posts into records, optionally dropping posts whose
// links no longer resolve to content.
type Extractor struct {
	validator LinkValidator
	logger    logger.Logger

	onSkip   func()
	onReject func()
}

// NewExtractor creates an Extractor. A nil validator keeps every well-formed post.
func NewExtractor(validator LinkValidator, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{validator: validator, logger: log}
}

// Extract converts posts in order. Malformed posts are logged and skipped.
// With a validator, posts whose link shows no content are dropped and any
// validation error stops extraction; it is returned with the records so far.
func (e *Extractor) Extract(ctx context.Context, posts []bluesky.RawPost) ([]models.PostRecord, error) {
	records := make([]models.PostRecord, 0, len(posts))

	for _, post := range posts {
		record, missing := ExtractPost(post)
		if missing != "" {
			uri := ""
			if post.URI != nil {
				uri = *post.URI
			}
			logger.LogSkippedPost(e.logger, uri, missing)
			if e.onSkip != nil {
				e.onSkip()
			}
			continue
		}

		if e.validator != nil {
			live, err := e.validator.Validate(ctx, record.PostLink)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, ctxErr
			}
			if err != nil {
				return records, fmt.Errorf("validating %s: %w", record.PostLink, err)
			}
			if !live {
				e.logger.DebugWithFields("Post has no content, skipping", map[string]interface{}{
					"post_link": record.PostLink,
				})
				if e.onReject != nil {
					e.onReject()
				}
				continue
			}
		}

		records = append(records, record)
	}

	return records, nil
}
