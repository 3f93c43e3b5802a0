// Package scraper implements the search pipeline.
//
// A run authenticates once, follows searchPosts cursors with a Paginator,
// flattens the raw posts with an Extractor (optionally checking each link
// with a LinkValidator) and hands the records to a storage strategy.
//
//	s := scraper.NewFromConfig(cfg, log)
//	if err := s.Authenticate(ctx, handle, appPassword); err != nil {
//	    return err
//	}
//	result, err := s.Run(ctx, bluesky.QueryParams{Query: "golang"})
//
// Fetch errors never abort a run: pagination stops and the posts gathered
// so far are saved.
package scraper
