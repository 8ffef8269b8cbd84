package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"scholarship_catalog/internal/domain"
)

// Config holds upstream source configuration.
type Config struct {
	ID                string
	Name              string
	BaseURL           string
	PageSize          int
	Timeout           time.Duration
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	RequestsPerSecond float64
	Location          *time.Location
}

// Source fetches scholarship listings from the upstream REST API.
type Source struct {
	httpClient     *http.Client
	id             string
	name           string
	baseURL        string
	pageSize       int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	limiter        *rate.Limiter
	validate       *validator.Validate
	loc            *time.Location
	logger         *slog.Logger
}

// New creates a new upstream source.
func New(cfg Config, logger *slog.Logger) *Source {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		id:             cfg.ID,
		name:           cfg.Name,
		baseURL:        cfg.BaseURL,
		pageSize:       cfg.PageSize,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		limiter:        rate.NewLimiter(limit, 1),
		validate:       validator.New(),
		loc:            loc,
		logger:         logger.With("source", cfg.ID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return s.id
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return s.name
}

// FetchScholarships walks the listing pages, up to maxPages, and returns the
// normalized records. Pages fetched before a failure are still returned.
func (s *Source) FetchScholarships(ctx context.Context, maxPages int) (domain.Batch, error) {
	var records []Record

	for page := 1; page <= maxPages; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			return s.transform(records), fmt.Errorf("fetch page %d: %w", page, err)
		}

		records = append(records, resp.Data...)

		s.logger.Debug("fetched page",
			"page", page,
			"scholarships", len(resp.Data),
			"total", len(records),
		)

		if page >= resp.Meta.LastPage {
			break
		}
	}

	return s.transform(records), nil
}

func (s *Source) fetchPage(ctx context.Context, page int) (*APIResponse, error) {
	url := fmt.Sprintf("%s?per_page=%d&page=%d", s.baseURL, s.pageSize, page)

	var resp *APIResponse
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err = s.doRequest(ctx, url)
		if err == nil {
			return resp, nil
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, url string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ScholarshipCatalog/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &apiResp, nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

func (s *Source) transform(records []Record) domain.Batch {
	batch := domain.Batch{Scholarships: make([]domain.Scholarship, 0, len(records))}

	for i := range records {
		r := &records[i]
		if err := s.check(r); err != nil {
			s.logger.Warn("dropping invalid scholarship",
				"external_id", string(r.ID),
				"error", err,
			)
			batch.Invalid++
			continue
		}

		scholarship, badDates := r.Normalize(s.id, s.loc)
		if len(badDates) > 0 {
			s.logger.Warn("failed to parse date",
				"external_id", scholarship.ID,
				"fields", badDates,
			)
		}

		batch.Scholarships = append(batch.Scholarships, scholarship)
	}

	return batch
}

// check enforces the required fields. Malformed links are blanked rather
// than failing the record.
func (s *Source) check(r *Record) error {
	err := s.validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() != "url" {
			return fmt.Errorf("field %s failed %s", fe.Field(), fe.Tag())
		}
		s.logger.Warn("discarding malformed link",
			"external_id", string(r.ID),
			"field", fe.Field(),
		)
		r.clearLink(fe.StructField())
	}
	return nil
}
