package subscription_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mediathekdl/internal/downloader"
	"mediathekdl/internal/model"
	"mediathekdl/internal/subscription"
)

type recordingRunner struct {
	calls int
	tasks []downloader.Task
}

func (r *recordingRunner) Run(_ context.Context, tasks []downloader.Task) downloader.Result {
	r.calls++
	r.tasks = tasks
	return downloader.Result{Succeeded: tasks}
}

func TestRunnerCombinesAllSubscriptionsIntoOneWave(t *testing.T) {
	subsDir := t.TempDir()
	writeFile(t, subsDir, "crime.toml", "term = \"%tatort%\"\nminimum_length = 3600\nidentifier = \"crime\"\n")
	writeFile(t, subsDir, "kids.toml", "term = \"%maus%\"\nminimum_length = 60\nidentifier = \"kids\"\n")

	catalog := &fakeCatalog{candidates: []model.Candidate{
		{Title: "Episode", URL: "http://example.com/video.mp4"},
	}}
	dl := &recordingRunner{}
	baseDir := t.TempDir()

	runner := subscription.NewRunner(catalog, dl, baseDir, discardLogger())
	result, err := runner.Run(context.Background(), subsDir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// One combined wave for both subscriptions, not one per subscription.
	if dl.calls != 1 {
		t.Fatalf("expected a single downloader invocation, got %d", dl.calls)
	}
	if len(dl.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(dl.tasks))
	}

	dirs := map[string]bool{}
	for _, task := range dl.tasks {
		dirs[task.Dir] = true
	}
	if !dirs[filepath.Join(baseDir, "crime")] || !dirs[filepath.Join(baseDir, "kids")] {
		t.Fatalf("tasks must target per-subscription folders, got %v", dirs)
	}
	if len(result.Succeeded) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunnerIsolatesUnbuildableTasks(t *testing.T) {
	subsDir := t.TempDir()
	writeFile(t, subsDir, "crime.toml", "term = \"%tatort%\"\nminimum_length = 3600\nidentifier = \"crime\"\n")

	catalog := &fakeCatalog{candidates: []model.Candidate{
		{Title: "Fine", URL: "http://example.com/ok.mp4"},
		{Title: "No extension", URL: "http://example.com/stream"},
	}}
	dl := &recordingRunner{}

	runner := subscription.NewRunner(catalog, dl, t.TempDir(), discardLogger())
	result, err := runner.Run(context.Background(), subsDir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(dl.tasks) != 1 {
		t.Fatalf("expected the buildable task to be downloaded, got %d", len(dl.tasks))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	if !errors.Is(result.Failed[0].Err, downloader.ErrMalformedURL) {
		t.Fatalf("expected ErrMalformedURL, got %v", result.Failed[0].Err)
	}
}
