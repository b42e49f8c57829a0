// Package watch periodically classifies the newest posts of a subreddit and
// reports the ones that look like they belong to the other one.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
)

// maxSeen bounds the number of remembered post IDs.
const maxSeen = 5000

// Source lists the newest posts of a subreddit.
type Source interface {
	Listing(ctx context.Context, subreddit string, limit int, after string) ([]features.RawPost, string, error)
}

// Classifier predicts the subreddit of posts.
type Classifier interface {
	Predict(posts []features.RawPost) ([]rustsub.Prediction, error)
}

// Watcher checks a subreddit for misplaced posts on a cron schedule.
// A post is misplaced when it is predicted to belong to a subreddit other
// than the one it was posted to. Every post is classified once.
type Watcher struct {
	source     Source
	classifier Classifier
	subreddit  string
	limit      int
	timeout    time.Duration

	// OnMisplaced is called for every misplaced post. Defaults to logging.
	OnMisplaced func(rustsub.Prediction)

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	cron  *cron.Cron
}

// New creates a watcher for the newest limit posts of subreddit.
func New(source Source, classifier Classifier, subreddit string, limit int) *Watcher {
	return &Watcher{
		source:     source,
		classifier: classifier,
		subreddit:  subreddit,
		limit:      limit,
		timeout:    time.Minute,
		seen:       make(map[string]struct{}),
	}
}

// Check fetches the newest posts, classifies the ones not seen before and
// returns the misplaced ones.
func (w *Watcher) Check(ctx context.Context) ([]rustsub.Prediction, error) {
	posts, _, err := w.source.Listing(ctx, w.subreddit, w.limit, "")
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w.mu.Lock()
	fresh := make([]features.RawPost, 0, len(posts))
	for _, p := range posts {
		if _, ok := w.seen[postKey(p)]; ok {
			continue
		}
		fresh = append(fresh, p)
	}
	w.mu.Unlock()

	slog.Debug("Checked subreddit", "subreddit", w.subreddit, "posts", len(posts), "new", len(fresh))
	if len(fresh) == 0 {
		return nil, nil
	}

	preds, err := w.classifier.Predict(fresh)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	// Posts are remembered only once classified, so a failed check is retried.
	w.mu.Lock()
	for _, p := range fresh {
		w.remember(postKey(p))
	}
	w.mu.Unlock()
	var misplaced []rustsub.Prediction
	for _, p := range preds {
		if strings.EqualFold(p.Subreddit, w.subreddit) {
			continue
		}
		misplaced = append(misplaced, p)
		if w.OnMisplaced != nil {
			w.OnMisplaced(p)
		} else {
			slog.Info("Misplaced post", "id", p.ID, "title", p.Title, "author", p.Author, "predicted", p.Subreddit, "score", p.Score)
		}
	}
	return misplaced, nil
}

// remember must be called with mu held.
func (w *Watcher) remember(key string) {
	if _, ok := w.seen[key]; ok {
		return
	}
	w.seen[key] = struct{}{}
	w.order = append(w.order, key)
	if len(w.order) > maxSeen {
		delete(w.seen, w.order[0])
		w.order = w.order[1:]
	}
}

func postKey(p features.RawPost) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Author + "\x00" + p.Title
}

// Start schedules Check with a cron spec such as "@every 15m" or "*/5 * * * *".
func (w *Watcher) Start(schedule string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("watch: already started")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if _, err := w.Check(ctx); err != nil {
			slog.Error("Check failed", "subreddit", w.subreddit, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("watch: schedule %q: %w", schedule, err)
	}
	c.Start()
	w.cron = c
	slog.Info("Watching", "subreddit", w.subreddit, "schedule", schedule)
	return nil
}

// Stop stops the schedule and waits for a running check to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
