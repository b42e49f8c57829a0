package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/rustsub/features"
)

func child(name, author, sub, title string, score int) map[string]any {
	return map[string]any{
		"kind": "t3",
		"data": map[string]any{
			"name":      name,
			"is_self":   true,
			"author":    author,
			"url":       "https://www.reddit.com/r/" + sub + "/comments/" + name,
			"downs":     0,
			"ups":       max(score, 0),
			"score":     score,
			"selftext":  "body of " + name,
			"subreddit": sub,
			"title":     title,
			"thumbnail": "self",
		},
	}
}

func page(after any, children ...map[string]any) map[string]any {
	return map[string]any{
		"kind": "Listing",
		"data": map[string]any{
			"after":    after,
			"children": children,
		},
	}
}

func TestListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/rust/new.json", r.URL.Path)
		require.Equal(t, "new", r.URL.Query().Get("sort"))
		require.Equal(t, "2", r.URL.Query().Get("limit"))
		require.Equal(t, "t3_prev", r.URL.Query().Get("after"))
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_ = json.NewEncoder(w).Encode(page("t3_b",
			child("t3_a", "alice", "rust", "Async traits", 10),
			child("t3_b", "bob", "rust", "Downvoted", -3),
		))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithUserAgent("test-agent"))
	posts, next, err := c.Listing(context.Background(), "rust", 2, "t3_prev")
	require.NoError(t, err)
	require.Equal(t, "t3_b", next)
	require.Len(t, posts, 2)
	require.Equal(t, features.RawPost{
		ID:        "t3_a",
		IsSelf:    true,
		Author:    "alice",
		URL:       "https://www.reddit.com/r/rust/comments/t3_a",
		Ups:       10,
		Score:     10,
		Selftext:  "body of t3_a",
		Subreddit: "rust",
		Title:     "Async traits",
	}, posts[0])
	require.Equal(t, uint64(0), posts[1].Score)
}

func TestListingLastPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "100", r.URL.Query().Get("limit"))
		require.False(t, r.URL.Query().Has("after"))
		_ = json.NewEncoder(w).Encode(page(nil))
	}))
	defer server.Close()

	posts, next, err := NewClient(WithBaseURL(server.URL)).Listing(context.Background(), "playrust", 500, "")
	require.NoError(t, err)
	require.Empty(t, posts)
	require.Empty(t, next)
}

func TestListingStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := NewClient(WithBaseURL(server.URL)).Listing(context.Background(), "rust", 10, "")
	require.ErrorIs(t, err, ErrStatus)
}

func TestPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/rust/comments/4tz6e5/aliased.json", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]any{
			page(nil, child("t3_4tz6e5", "carol", "rust", "Are aliased pointers UB?", 7)),
			page(nil),
		})
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	p, err := c.Post(context.Background(), "/r/rust/comments/4tz6e5/aliased/")
	require.NoError(t, err)
	require.Equal(t, "carol", p.Author)
	require.Equal(t, "t3_4tz6e5", p.ID)

	p, err = c.Post(context.Background(), server.URL+"/r/rust/comments/4tz6e5/aliased")
	require.NoError(t, err)
	require.Equal(t, "Are aliased pointers UB?", p.Title)
}

func TestCollect(t *testing.T) {
	var pages atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		after := r.URL.Query().Get("after")
		switch after {
		case "":
			_ = json.NewEncoder(w).Encode(page("t3_2", child("t3_1", "a", "rust", "one", 1), child("t3_2", "b", "rust", "two", 1)))
		case "t3_2":
			_ = json.NewEncoder(w).Encode(page(nil, child("t3_3", "c", "rust", "three", 1)))
		default:
			t.Errorf("unexpected after %q", after)
		}
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	var got []string
	n, err := c.Collect(context.Background(), "rust", 2, 0, func(posts []features.RawPost) error {
		for _, p := range posts {
			got = append(got, p.Title)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []string{"one", "two", "three"}, got)
	require.Equal(t, int32(2), pages.Load())

	pages.Store(0)
	n, err = c.Collect(context.Background(), "rust", 2, 1, func([]features.RawPost) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(1), pages.Load())

	_, err = c.Collect(context.Background(), "rust", 2, 0, func([]features.RawPost) error {
		return fmt.Errorf("disk full")
	})
	require.EqualError(t, err, "disk full")
}
