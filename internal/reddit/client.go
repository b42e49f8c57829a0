// Package reddit fetches posts from the public Reddit JSON listings.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/happyhackingspace/rustsub/features"
)

const (
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "rustsub/dev (+https://github.com/happyhackingspace/rustsub)"
	defaultTimeout   = 15 * time.Second

	// MaxPageSize is the largest page Reddit serves for a listing.
	MaxPageSize = 100
)

// ErrStatus is returned when Reddit answers with a non-200 status.
var ErrStatus = errors.New("reddit: unexpected status")

// Client fetches posts from Reddit.
type Client struct {
	baseURL    string
	userAgent  string
	pageDelay  time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Reddit base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header. Reddit throttles generic agents.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithPageDelay sets the pause between listing pages in Collect.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		c.pageDelay = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listing struct {
	Data struct {
		After    *string `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string `json:"kind"`
	Data post   `json:"data"`
}

// post is a listing child as Reddit sends it. Scores may be negative.
type post struct {
	Name      string `json:"name"`
	IsSelf    bool   `json:"is_self"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Downs     int64  `json:"downs"`
	Ups       int64  `json:"ups"`
	Score     int64  `json:"score"`
	Selftext  string `json:"selftext"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
}

func (p post) raw() features.RawPost {
	return features.RawPost{
		ID:        p.Name,
		IsSelf:    p.IsSelf,
		Author:    p.Author,
		URL:       p.URL,
		Downs:     count(p.Downs),
		Ups:       count(p.Ups),
		Score:     count(p.Score),
		Selftext:  p.Selftext,
		Subreddit: p.Subreddit,
		Title:     p.Title,
	}
}

func count(n int64) uint64 {
	return uint64(max(n, 0))
}

func (l listing) posts() []features.RawPost {
	posts := make([]features.RawPost, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		posts = append(posts, child.Data.raw())
	}
	return posts
}

// Listing fetches one page of the newest posts of a subreddit. after is the
// fullname to continue from ("" for the first page); the returned next is
// "" when there are no more pages.
func (c *Client) Listing(ctx context.Context, subreddit string, limit int, after string) (posts []features.RawPost, next string, err error) {
	q := url.Values{}
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(min(max(limit, 1), MaxPageSize)))
	if after != "" {
		q.Set("after", after)
	}
	u := fmt.Sprintf("%s/r/%s/new.json?%s", c.baseURL, url.PathEscape(subreddit), q.Encode())

	var l listing
	if err := c.getJSON(ctx, u, &l); err != nil {
		return nil, "", fmt.Errorf("listing r/%s: %w", subreddit, err)
	}
	if l.Data.After != nil {
		next = *l.Data.After
	}
	return l.posts(), next, nil
}

// Post fetches a single post from its permalink. Relative links are resolved
// against the base URL.
func (c *Client) Post(ctx context.Context, permalink string) (features.RawPost, error) {
	u := strings.TrimSuffix(permalink, "/")
	if strings.HasPrefix(u, "/") {
		u = c.baseURL + u
	}
	u += ".json"

	// A post page is a pair of listings: the post itself and its comments.
	var pages []listing
	if err := c.getJSON(ctx, u, &pages); err != nil {
		return features.RawPost{}, fmt.Errorf("post %s: %w", permalink, err)
	}
	if len(pages) == 0 || len(pages[0].Data.Children) == 0 {
		return features.RawPost{}, fmt.Errorf("post %s: no post in response", permalink)
	}
	return pages[0].Data.Children[0].Data.raw(), nil
}

// Collect pages through the newest posts of a subreddit, handing every page
// to fn, until the listing ends or maxPosts posts were seen (0 means no
// limit). It returns the number of posts handed to fn.
func (c *Client) Collect(ctx context.Context, subreddit string, pageSize, maxPosts int, fn func([]features.RawPost) error) (int, error) {
	total := 0
	after := ""
	for {
		posts, next, err := c.Listing(ctx, subreddit, pageSize, after)
		if err != nil {
			return total, err
		}
		if maxPosts > 0 && total+len(posts) > maxPosts {
			posts = posts[:maxPosts-total]
		}
		if len(posts) > 0 {
			if err := fn(posts); err != nil {
				return total, err
			}
		}
		total += len(posts)
		slog.Debug("Fetched page", "subreddit", subreddit, "posts", len(posts), "total", total, "after", next)

		if next == "" || (maxPosts > 0 && total >= maxPosts) {
			return total, nil
		}
		after = next

		if c.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(c.pageDelay):
			}
		}
	}
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
