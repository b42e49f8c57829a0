package watch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/reddit"
)

// selfClassifier predicts r/rust for self posts and r/playrust for links.
type selfClassifier struct {
	mu    sync.Mutex
	calls [][]features.RawPost
}

func (c *selfClassifier) Predict(posts []features.RawPost) ([]rustsub.Prediction, error) {
	c.mu.Lock()
	c.calls = append(c.calls, posts)
	c.mu.Unlock()
	out := make([]rustsub.Prediction, len(posts))
	for i, p := range posts {
		sub := features.SubRust
		if !p.IsSelf {
			sub = features.SubPlayRust
		}
		out[i] = rustsub.Prediction{ID: p.ID, Title: p.Title, Author: p.Author, Subreddit: sub}
	}
	return out, nil
}

func listingServer(t *testing.T, posts *[]map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/rust/new.json", r.URL.Path)
		children := make([]map[string]any, len(*posts))
		for i, p := range *posts {
			children[i] = map[string]any{"kind": "t3", "data": p}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"kind": "Listing",
			"data": map[string]any{"after": nil, "children": children},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func redditPost(id string, self bool) map[string]any {
	return map[string]any{
		"name":      id,
		"is_self":   self,
		"author":    "author_" + id,
		"subreddit": "rust",
		"title":     "Post " + id,
		"selftext":  "some text for " + id,
	}
}

func TestCheck(t *testing.T) {
	posts := []map[string]any{redditPost("t3_a", true), redditPost("t3_b", false)}
	server := listingServer(t, &posts)

	cl := &selfClassifier{}
	w := New(reddit.NewClient(reddit.WithBaseURL(server.URL)), cl, "rust", 25)
	var reported []string
	w.OnMisplaced = func(p rustsub.Prediction) { reported = append(reported, p.ID) }

	misplaced, err := w.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, misplaced, 1)
	require.Equal(t, "t3_b", misplaced[0].ID)
	require.Equal(t, "playrust", misplaced[0].Subreddit)
	require.Equal(t, []string{"t3_b"}, reported)

	// Nothing new: the classifier is not called again.
	misplaced, err = w.Check(context.Background())
	require.NoError(t, err)
	require.Empty(t, misplaced)
	require.Len(t, cl.calls, 1)

	posts = append(posts, redditPost("t3_c", false))
	misplaced, err = w.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, misplaced, 1)
	require.Equal(t, "t3_c", misplaced[0].ID)
	require.Len(t, cl.calls, 2)
	require.Len(t, cl.calls[1], 1)
}

// flakyClassifier fails until fail is cleared.
type flakyClassifier struct {
	selfClassifier
	fail bool
}

func (c *flakyClassifier) Predict(posts []features.RawPost) ([]rustsub.Prediction, error) {
	if c.fail {
		return nil, errors.New("model unavailable")
	}
	return c.selfClassifier.Predict(posts)
}

func TestCheckRetriesAfterPredictError(t *testing.T) {
	posts := []map[string]any{redditPost("t3_a", true), redditPost("t3_b", false)}
	server := listingServer(t, &posts)

	cl := &flakyClassifier{fail: true}
	w := New(reddit.NewClient(reddit.WithBaseURL(server.URL)), cl, "rust", 25)
	w.OnMisplaced = func(rustsub.Prediction) {}

	_, err := w.Check(context.Background())
	require.ErrorContains(t, err, "model unavailable")
	require.Empty(t, w.seen)

	cl.fail = false
	misplaced, err := w.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, misplaced, 1)
	require.Equal(t, "t3_b", misplaced[0].ID)
	require.Len(t, cl.calls, 1)
	require.Len(t, cl.calls[0], 2)
}

type failingSource struct{}

func (failingSource) Listing(context.Context, string, int, string) ([]features.RawPost, string, error) {
	return nil, "", errors.New("offline")
}

func TestCheckSourceError(t *testing.T) {
	w := New(failingSource{}, &selfClassifier{}, "rust", 25)
	_, err := w.Check(context.Background())
	require.ErrorContains(t, err, "offline")
}

func TestRememberBounded(t *testing.T) {
	w := New(failingSource{}, &selfClassifier{}, "rust", 25)
	for i := range maxSeen + 10 {
		w.remember(string(rune('a'+i%26)) + string(rune(i)))
	}
	require.Len(t, w.seen, maxSeen)
	require.Len(t, w.order, maxSeen)
}

func TestStartStop(t *testing.T) {
	w := New(failingSource{}, &selfClassifier{}, "rust", 25)
	require.Error(t, w.Start("not a schedule"))

	require.NoError(t, w.Start("@every 1h"))
	require.Error(t, w.Start("@every 1h"))
	w.Stop()
	w.Stop()
	require.NoError(t, w.Start("@every 1h"))
	w.Stop()
}
