// Package linkcheck tells live post links from removed ones.
//
// bsky.app serves the same application shell for a deleted post as it does
// for any unknown URL. A link is considered live when its page differs,
// line by line, from a saved copy of that "no content" page.
package linkcheck

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "bskyscraper/pkg/errors"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/ratelimit"

	"github.com/pmezard/go-difflib/difflib"
)

// maxBodySize caps how much of a page is compared
const maxBodySize = 5 * 1024 * 1024

// DefaultTemplate is the bsky.app page served for a removed or unknown post
//
//go:embed no_content_template.html
var DefaultTemplate string

// Validator compares fetched pages against the no-content template
type Validator struct {
	httpClient   *http.Client
	templatePath string
	limiter      ratelimit.Limiter
	logger       logger.Logger
}

// NewValidator creates a Validator. An empty templatePath compares against
// DefaultTemplate and a nil limiter means requests are not paced.
func NewValidator(templatePath string, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Validator {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Validator{
		httpClient:   &http.Client{Timeout: timeout},
		templatePath: templatePath,
		limiter:      limiter,
		logger:       log,
	}
}

// Validate reports whether the page at url differs from the no-content
// template, i.e. true when the post appears to exist. The response status is
// not inspected. Transport failures come back as network errors and an
// unreadable template as a config error.
func (v *Validator) Validate(ctx context.Context, url string) (bool, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return false, apperrors.Wrap(apperrors.ErrorTypeNetwork, "validation canceled", err)
	}

	page, err := v.fetch(ctx, url)
	if err != nil {
		return false, err
	}

	template, err := v.template()
	if err != nil {
		return false, err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       splitLines(page),
		B:       splitLines(template),
		Context: 3,
	})
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrorTypeUnknown, "failed to diff page", err)
	}

	differs := diff != ""
	v.logger.DebugWithFields("Link validated", map[string]interface{}{
		"url":     url,
		"differs": differs,
	})
	return differs, nil
}

func (v *Validator) template() (string, error) {
	if v.templatePath == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(v.templatePath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypeConfig,
			fmt.Sprintf("cannot read template %s", v.templatePath), err)
	}
	return string(data), nil
}

func (v *Validator) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypeUnknown, "failed to create request", err)
	}
	req.Header.Set("User-Agent", "bskyscraper/1.0")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypeNetwork, fmt.Sprintf("URL validation failed for %s", url), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypeNetwork, "failed to read page body", err)
	}
	return string(body), nil
}

// splitLines breaks s into lines the way the template was recorded: a final
// newline does not start an extra empty line and CRLF counts as one break.
// difflib expects every line to end in "\n".
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i := range lines {
		lines[i] += "\n"
	}
	return lines
}
