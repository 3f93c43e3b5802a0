// Package storage persists scraped posts as CSV datasets.
//
// A dataset is a UTF-8 CSV file with the header author,content,created_at,post_link.
// Two strategies write it: MergeStrategy unions a batch with the existing file and
// deduplicates by post link, ReplaceStrategy overwrites it with the batch alone.
// Both write through a temporary file and rename it into place.
package storage
