package subscription

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"mediathekdl/internal/downloader"
)

// TaskRunner executes download tasks and reports every outcome.
type TaskRunner interface {
	Run(ctx context.Context, tasks []downloader.Task) downloader.Result
}

// Runner matches all subscriptions against the catalog and hands the
// combined task list to the downloader in one go, so each invocation is a
// single concurrent wave rather than one wave per subscription.
type Runner struct {
	catalog    CatalogSearcher
	downloader TaskRunner
	baseDir    string
	logger     *log.Logger
}

func NewRunner(catalog CatalogSearcher, dl TaskRunner, baseDir string, logger *log.Logger) *Runner {
	return &Runner{
		catalog:    catalog,
		downloader: dl,
		baseDir:    baseDir,
		logger:     logger,
	}
}

// Run loads the subscriptions in dir, matches them sequentially, and
// downloads every match. A catalog query failure is fatal; download
// failures are collected in the result instead. A match whose URL cannot
// be turned into a task fails like a download would, without touching its
// siblings.
func (r *Runner) Run(ctx context.Context, dir string) (downloader.Result, error) {
	subs, err := LoadDir(dir, r.logger)
	if err != nil {
		return downloader.Result{}, err
	}

	var (
		tasks     []downloader.Task
		malformed []downloader.Failure
	)

	for _, sub := range subs {
		matches, err := sub.Match(ctx, r.catalog)
		if err != nil {
			return downloader.Result{}, fmt.Errorf("subscription %q: %w", sub.Identifier, err)
		}

		r.logger.Info("matched subscription", "identifier", sub.Identifier, "entries", len(matches))

		targetDir := filepath.Join(r.baseDir, sub.Identifier)
		for _, match := range matches {
			task, err := downloader.BuildTask(targetDir, match.Title, match.Date, match.URL)
			if err != nil {
				malformed = append(malformed, downloader.Failure{
					Task: downloader.Task{URL: match.URL, Dir: targetDir},
					Err:  err,
				})
				continue
			}
			tasks = append(tasks, task)
		}
	}

	result := r.downloader.Run(ctx, tasks)
	result.Failed = append(result.Failed, malformed...)

	return result, nil
}
