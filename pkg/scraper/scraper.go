package scraper

import (
	"context"
	"errors"
	"fmt"

	"bskyscraper/internal/linkcheck"
	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/config"
	apperrors "bskyscraper/pkg/errors"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/ratelimit"
	"bskyscraper/pkg/storage"
	"bskyscraper/pkg/ui"

	"github.com/google/uuid"
)

// ErrNotAuthenticated is returned by Run before Authenticate succeeded
var ErrNotAuthenticated = apperrors.New(apperrors.ErrorTypeAuth, "no session, authenticate first")

// Result summarizes a completed run
type Result struct {
	RunID   string
	Query   string
	Path    string
	Fetched int
	Saved   int
	Summary string
}

// Scraper runs the search → extract → persist pipeline
type Scraper struct {
	client    Client
	storage   *storage.Manager
	validator LinkValidator
	notifier  *ui.Notifier
	config    *config.Config
	logger    logger.Logger
	token     string
}

// New creates a Scraper from its collaborators. Link validation is wired
// from cfg.Validation when enabled.
func New(cfg *config.Config, client Client, store *storage.Manager, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Scraper{
		client:   client,
		storage:  store,
		notifier: ui.NewNotifier(cfg.Output.Notify),
		config:   cfg,
		logger:   log,
	}

	if cfg.Validation.Enabled {
		s.validator = linkcheck.NewValidator(
			cfg.Validation.TemplatePath,
			cfg.Validation.Timeout,
			ratelimit.PerMinute(cfg.Validation.RequestsPerMinute),
			log,
		)
	}
	return s
}

// NewFromConfig builds the Bluesky client and storage manager from cfg
func NewFromConfig(cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	client := bluesky.NewClient(cfg.Bluesky.BaseURL, cfg.Bluesky.Timeout, log)
	store := storage.NewManager(cfg.Output.Directory, log)
	return New(cfg, client, store, log)
}

// SetValidator overrides link validation; nil disables it
func (s *Scraper) SetValidator(v LinkValidator) {
	s.validator = v
}

// SetNotifier overrides how run completion is announced
func (s *Scraper) SetNotifier(n *ui.Notifier) {
	s.notifier = n
}

// Storage returns the storage manager
func (s *Scraper) Storage() *storage.Manager {
	return s.storage
}

// Authenticate creates a session and keeps its access token for later runs
func (s *Scraper) Authenticate(ctx context.Context, identifier, password string) error {
	if identifier == "" || password == "" {
		return apperrors.New(apperrors.ErrorTypeAuth, "handle and app password are required")
	}

	session, err := s.client.CreateSession(ctx, identifier, password)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	s.token = session.AccessJwt
	return nil
}

// Run searches for params.Query, extracts records and saves them with the
// configured strategy into the dataset named after the query.
func (s *Scraper) Run(ctx context.Context, params bluesky.QueryParams) (*Result, error) {
	return s.RunTo(ctx, params, s.storage.DatasetPath(params.Query))
}

// RunTo is Run with an explicit dataset path
func (s *Scraper) RunTo(ctx context.Context, params bluesky.QueryParams, path string) (*Result, error) {
	if s.token == "" {
		return nil, ErrNotAuthenticated
	}

	runID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"query":  params.Query,
	})

	strategy, err := s.storage.Strategy(s.config.Output.Strategy)
	if err != nil {
		return nil, err
	}

	params = s.applyDefaults(params)
	params = s.client.PrepareQuery(ctx, s.token, params)
	log.InfoWithFields("Starting search", params.Fields())

	progress := ui.NewSearchProgress(params.Query)

	ui.PrintHighlight("Fetching posts...")
	paginator := NewPaginator(s.client, s.token, s.config.Search.MaxPages, log)
	paginator.OnPage(progress.PageFetched)
	posts := paginator.Collect(ctx, params)
	if !ui.IsQuietMode() {
		fmt.Fprintln(ui.Out)
	}

	ui.PrintHighlight("Extracting post data...")
	extractor := NewExtractor(s.validator, log)
	extractor.onSkip = progress.PostSkipped
	extractor.onReject = progress.LinkRejected
	records, extractErr := extractor.Extract(ctx, posts)
	if extractErr != nil && !errors.Is(extractErr, context.Canceled) && !errors.Is(extractErr, context.DeadlineExceeded) {
		s.notifier.SendError("Scrape failed", extractErr.Error())
		return nil, fmt.Errorf("failed to extract posts: %w", extractErr)
	}
	for range records {
		progress.PostKept()
	}

	ui.PrintHighlight("Saving data...")
	saved, err := strategy.Save(records, path)
	if err != nil {
		s.notifier.SendError("Scrape failed", err.Error())
		return nil, fmt.Errorf("failed to save posts: %w", err)
	}

	result := &Result{
		RunID:   runID,
		Query:   params.Query,
		Path:    saved,
		Fetched: len(posts),
		Saved:   len(records),
		Summary: progress.Summary(),
	}

	log.InfoWithFields("Run complete", map[string]interface{}{
		"fetched":  result.Fetched,
		"saved":    result.Saved,
		"path":     result.Path,
		"strategy": strategy.Name(),
	})

	if saved == "" {
		ui.PrintWarning("No posts to save")
	} else {
		s.notifier.SendSuccess("Scrape complete", fmt.Sprintf("%d posts saved to %s", result.Saved, saved))
	}

	// Interrupted extraction still saves what it had
	return result, extractErr
}

// applyDefaults fills filters the caller left empty from the search config
func (s *Scraper) applyDefaults(params bluesky.QueryParams) bluesky.QueryParams {
	if params.Sort == "" {
		params.Sort = s.config.Search.Sort
	}
	if params.Lang == "" {
		params.Lang = s.config.Search.Lang
	}
	if params.Limit <= 0 {
		params.Limit = s.config.Search.Limit
	}
	return params
}
