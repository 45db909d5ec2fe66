// Package batch hands a list of downloads to IDM, one IDMan.exe invocation per job.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailscale/hujson"
	"golang.org/x/sync/errgroup"

	"github.com/idm-go/idm/config"
	"github.com/idm-go/idm/idman"
	"github.com/idm-go/idm/logger"
)

const defaultConcurrency = 1

// Job is one entry of a batch file. Empty fields fall back to the config.
type Job struct {
	ID     string `json:"-"`
	URL    string `json:"url"`
	Path   string `json:"path,omitempty"`
	Name   string `json:"name,omitempty"`
	Silent *bool  `json:"silent,omitempty"`
}

// Result reports what happened to one job. Err is nil when IDM was started,
// whatever IDM made of the download.
type Result struct {
	Job      Job
	Err      error
	Skipped  bool // never started because the batch was stopped first
	Duration time.Duration
}

// Options configures a batch run
type Options struct {
	Concurrency int
	// KeepGoing runs every job even after one fails to start.
	KeepGoing bool
	// OnDone, when set, is called once per finished job. Calls may overlap
	// when Concurrency > 1.
	OnDone func(Result)
}

// DefaultOptions runs jobs one at a time and stops at the first failure.
func DefaultOptions() Options {
	return Options{Concurrency: defaultConcurrency}
}

// ParseFile reads a batch file. Files ending in .txt or .list hold one URL
// per line; anything else is a JWCC array of jobs.
func ParseFile(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var jobs []Job
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".list":
		jobs, err = ParseList(data)
	default:
		jobs, err = ParseJobs(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// ParseList parses one URL per line. Blank lines and lines starting with # are skipped.
func ParseList(data []byte) ([]Job, error) {
	var jobs []Job
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		jobs = append(jobs, Job{ID: uuid.NewString(), URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ParseJobs parses a JWCC array like [{"url": "...", "name": "setup.exe"}].
func ParseJobs(data []byte) ([]Job, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid batch file: %w", err)
	}

	var jobs []Job
	if err := json.Unmarshal(std, &jobs); err != nil {
		return nil, fmt.Errorf("invalid batch file: %w", err)
	}

	for i := range jobs {
		if strings.TrimSpace(jobs[i].URL) == "" {
			return nil, fmt.Errorf("job %d: url is required", i+1)
		}
		jobs[i].ID = uuid.NewString()
	}
	return jobs, nil
}

// BuildRequest applies cfg and then the job's own fields to a new request.
func BuildRequest(cfg config.Config, job Job) *idman.Request {
	r := cfg.Apply(idman.New()).SetSourceURL(job.URL)
	if job.Path != "" {
		r.SetDestinationPath(job.Path)
	}
	if job.Name != "" {
		r.SetDestinationFileName(job.Name)
	}
	if job.Silent != nil {
		if *job.Silent {
			r.SetMode(idman.ModeSilent)
		} else {
			r.SetMode(idman.ModeDefault)
		}
	}
	return r
}

// Run starts IDM for every job. Results come back in input order. Without
// KeepGoing the first error cancels the jobs that have not started yet and is
// returned; with it, all errors are joined.
func Run(ctx context.Context, cfg config.Config, jobs []Job, opts Options) ([]Result, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}

	results := make([]Result, len(jobs))
	var doneMu sync.Mutex

	logger.Debug("running batch", "jobs", len(jobs), "concurrency", opts.Concurrency, "keep_going", opts.KeepGoing)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.NewString()
		}

		g.Go(func() error {
			res := Result{Job: job}
			if err := gctx.Err(); err != nil {
				res.Err = err
				res.Skipped = true
				results[i] = res
				logger.Debug("job skipped", "id", job.ID, "url", job.URL)
				return nil
			}

			start := time.Now()
			res.Err = BuildRequest(cfg, job).RunContext(gctx)
			res.Duration = time.Since(start)
			results[i] = res

			if res.Err != nil {
				logger.Debug("job failed", "id", job.ID, "url", job.URL, "error", res.Err)
			} else {
				logger.Debug("job handed to idm", "id", job.ID, "url", job.URL, "duration", res.Duration)
			}

			if opts.OnDone != nil {
				doneMu.Lock()
				opts.OnDone(res)
				doneMu.Unlock()
			}

			if res.Err != nil && !opts.KeepGoing {
				return fmt.Errorf("job %s (%s): %w", job.ID, job.URL, res.Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	if opts.KeepGoing {
		var errs []error
		for _, r := range results {
			if r.Err != nil && !r.Skipped {
				errs = append(errs, fmt.Errorf("job %s (%s): %w", r.Job.ID, r.Job.URL, r.Err))
			}
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
		}
		return results, errors.Join(errs...)
	}

	// cancelled from outside
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
