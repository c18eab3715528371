package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"

	"github.com/okian/sugarsignal/internal/domain/features"
	"github.com/okian/sugarsignal/internal/domain/model"
	"github.com/okian/sugarsignal/pkg/logger"
)

const percentageMultiplier = 100

// Run checks health, submits every generated input twice, sends one invalid
// request and verifies the answers. The report is returned even when
// verification fails.
func Run(ctx context.Context, cfg Config, log logger.Logger) (*Report, error) {
	cfg = withDefaults(cfg)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrConfig)
	}
	if log == nil {
		log = logger.Discard()
	}

	report := &Report{Requests: cfg.Requests, ByLabel: map[int]int{}, StartTime: time.Now()}
	client := newHTTPClient(cfg.Timeout)
	url := strings.TrimRight(cfg.BaseURL, "/") + cfg.Path

	log.Info(ctx, "starting probe",
		logger.String("url", url),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
	)

	if err := checkHealth(ctx, client, cfg.BaseURL); err != nil {
		return nil, err
	}

	cases := Generate(cfg.Requests, cfg.Seed)
	submit(ctx, client, url, cases, cfg.Workers, report)
	verify(cases, report)
	report.InvalidRejected = checkInvalid(ctx, client, url)

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	logReport(ctx, log, report)

	if cfg.OutputFile != "" {
		if err := saveCases(cfg.OutputFile, cases); err != nil {
			log.Warn(ctx, "failed to save probe cases", logger.Error(err))
		}
	}

	if !report.OK() {
		return report, fmt.Errorf("%w: failed=%d mismatched=%d out_of_domain=%d invalid_rejected=%t",
			ErrVerification, report.Failed, report.Mismatched, report.OutOfDomain, report.InvalidRejected)
	}
	return report, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Requests <= 0 {
		cfg.Requests = DefaultRequests
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

func checkHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	status, body, err := client.Get(ctx, strings.TrimRight(baseURL, "/")+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != statusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUnhealthy, status, strings.TrimSpace(string(body)))
	}
	return nil
}

// submit posts every case twice on a bounded worker pool.
func submit(ctx context.Context, client *HTTPClient, url string, cases []Case, workers int, report *Report) {
	var submitted, succeeded, failed atomic.Int64
	var mu sync.Mutex

	wp := workerpool.New(workers)
	for i := range cases {
		for attempt := 0; attempt < 2; attempt++ {
			c, attempt := &cases[i], attempt
			wp.Submit(func() {
				label, err := predict(ctx, client, url, c.ID, c.Input)
				submitted.Add(1)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed.Add(1)
					c.Err = err.Error()
					label = -1
				} else {
					succeeded.Add(1)
				}
				if attempt == 0 {
					c.First = label
				} else {
					c.Second = label
				}
			})
		}
	}
	wp.StopWait()

	report.Submitted = submitted.Load()
	report.Succeeded = succeeded.Load()
	report.Failed = failed.Load()
}

func predict(ctx context.Context, client *HTTPClient, url, id string, in model.InputData) (int, error) {
	status, body, err := client.Post(ctx, url, id, in)
	if err != nil {
		return 0, err
	}
	if status != statusOK {
		return 0, fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))
	}
	var resp model.PredictionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return resp.Prediction, nil
}

func verify(cases []Case, report *Report) {
	for _, c := range cases {
		if c.Err != "" {
			continue
		}
		if c.First != c.Second {
			report.Mismatched++
		}
		if c.First != 0 && c.First != 1 {
			report.OutOfDomain++
			continue
		}
		report.ByLabel[c.First]++
	}
}

// checkInvalid sends a body without Age and expects a validation error.
func checkInvalid(ctx context.Context, client *HTTPClient, url string) bool {
	body := map[string]float64{}
	for _, name := range features.Order() {
		if name != features.Age {
			body[name] = 1
		}
	}
	status, _, err := client.Post(ctx, url, "", body)
	return err == nil && status == statusUnprocessableEntity
}

func logReport(ctx context.Context, log logger.Logger, r *Report) {
	var successRate, perSecond float64
	if r.Submitted > 0 {
		successRate = float64(r.Succeeded) / float64(r.Submitted) * percentageMultiplier
	}
	if r.Duration > 0 {
		perSecond = float64(r.Submitted) / r.Duration.Seconds()
	}
	log.Info(ctx, "probe finished",
		logger.Int("submitted", int(r.Submitted)),
		logger.Int("failed", int(r.Failed)),
		logger.Int("mismatched", r.Mismatched),
		logger.Int("outOfDomain", r.OutOfDomain),
		logger.Int("positive", r.ByLabel[1]),
		logger.Bool("invalidRejected", r.InvalidRejected),
		logger.String("duration", r.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond),
	)
}

func saveCases(path string, cases []Case) error {
	if len(cases) == 0 {
		return errors.New("no cases to save")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cases: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write cases: %w", err)
	}
	return nil
}
