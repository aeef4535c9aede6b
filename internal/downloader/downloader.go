package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// ErrMalformedURL reports a download URL whose trailing path segment has
// no file extension to derive the target file name from.
var ErrMalformedURL = errors.New("url has no file extension")

// Task is one download: fetch URL fully, write it as one file under Dir.
type Task struct {
	URL      string
	Dir      string
	FileName string
}

func (t Task) Path() string {
	return filepath.Join(t.Dir, t.FileName)
}

// Failure pairs a task with the error that sank it.
type Failure struct {
	Task Task
	Err  error
}

// Result is the aggregate outcome of one download wave. Partial failure is
// normal: Run always returns a Result, callers report Failed themselves.
type Result struct {
	Succeeded []Task
	Failed    []Failure
}

// Errs flattens the failures for the final error summary.
func (r Result) Errs() []error {
	return lo.Map(r.Failed, func(f Failure, _ int) error {
		return f.Err
	})
}

// BuildTask derives the target file name "<date>_<title>.<ext>": the air
// date as ISO-8601 or "unknown_date", the title trimmed, lowercased and
// with spaces as underscores, and the extension taken from the URL's
// trailing path segment. Names within one folder are expected to be unique
// by date and title; a collision silently overwrites.
func BuildTask(dir, title string, date *time.Time, rawURL string) (Task, error) {
	ext, ok := urlExtension(rawURL)
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrMalformedURL, rawURL)
	}

	dateName := "unknown_date"
	if date != nil {
		dateName = date.Format("2006-01-02")
	}

	titleName := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")

	return Task{
		URL:      rawURL,
		Dir:      dir,
		FileName: fmt.Sprintf("%s_%s.%s", dateName, titleName, ext),
	}, nil
}

func urlExtension(rawURL string) (string, bool) {
	segment := rawURL
	if i := strings.LastIndexByte(segment, '/'); i >= 0 {
		segment = segment[i+1:]
	}

	i := strings.LastIndexByte(segment, '.')
	if i < 0 || i == len(segment)-1 {
		return "", false
	}

	return segment[i+1:], true
}

// Downloader runs download tasks on a bounded worker pool.
type Downloader struct {
	client      *http.Client
	concurrency int
	timeout     time.Duration
	logger      *log.Logger
}

func New(client *http.Client, concurrency int, timeout time.Duration, logger *log.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if concurrency < 1 {
		concurrency = 1
	}

	return &Downloader{
		client:      client,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger,
	}
}

// Run executes all tasks and waits for every one of them. A failing task
// is recorded and never cancels or affects its siblings. Run returns
// normally even when every task failed.
func (d *Downloader) Run(ctx context.Context, tasks []Task) Result {
	errs := make([]error, len(tasks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for n := 0; n < d.concurrency; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = d.download(ctx, tasks[i])
			}
		}()
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var result Result
	for i, task := range tasks {
		if errs[i] != nil {
			result.Failed = append(result.Failed, Failure{Task: task, Err: errs[i]})
			continue
		}
		result.Succeeded = append(result.Succeeded, task)
	}

	return result
}

// download fetches the task's URL fully into memory, then writes the
// target file in one piece. No partial writes, no resume.
func (d *Downloader) download(ctx context.Context, task Task) error {
	d.logger.Info("starting download", "file", task.FileName)

	if err := os.MkdirAll(task.Dir, 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: unexpected status %s", task.URL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", task.URL, err)
	}

	if err := os.WriteFile(task.Path(), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", task.Path(), err)
	}

	d.logger.Info("finished download", "file", task.FileName)
	return nil
}
