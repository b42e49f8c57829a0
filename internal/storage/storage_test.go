package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/happyhackingspace/rustsub/features"
)

func TestGetDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://example.org/page", "example"},
		{"https://foo.example.co.uk/path", "example"},
		{"http://www.google.com", "google"},
		{"example.org", "example"},
		{"http://localhost:8080/path", "localhost"},
		{"https://www.reddit.com/r/rust/comments/4tz6e5/aliased", "reddit"},
		{"https://i.imgur.com/abc.png", "imgur"},
		{"https://GitHub.com?tab=repos", "github"},
	}
	for _, tt := range tests {
		got := GetDomain(tt.url)
		if got != tt.want {
			t.Errorf("GetDomain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestPath(t *testing.T) {
	s := NewStorage("data")
	tests := []struct {
		name string
		want string
	}{
		{PostsFile, filepath.Join("data", PostsFile)},
		{"/tmp/posts.csv", "/tmp/posts.csv"},
		{"./posts.csv", "./posts.csv"},
	}
	for _, tt := range tests {
		if got := s.Path(tt.name); got != tt.want {
			t.Errorf("Path(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
	if got := NewStorage("").Path(PostsFile); got != PostsFile {
		t.Errorf("Path without folder = %q, want %q", got, PostsFile)
	}
}

func samplePosts() []features.RawPost {
	return []features.RawPost{
		{
			ID:        "t3_abc",
			IsSelf:    true,
			Author:    "steveklabnik",
			URL:       "https://www.reddit.com/r/rust/comments/abc/lifetimes",
			Ups:       12,
			Score:     12,
			Selftext:  "fn main() {\n    println!(\"hi, \\\"there\\\"\");\n}",
			Subreddit: "rust",
			Title:     "Lifetimes, again",
		},
		{
			Author:    "raider",
			URL:       "https://i.imgur.com/base.png",
			Downs:     2,
			Ups:       5,
			Score:     3,
			Subreddit: "playrust",
			Title:     "My base",
		},
	}
}

func TestPostsCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostsCSV(&buf, samplePosts()); err != nil {
		t.Fatalf("WritePostsCSV: %v", err)
	}
	got, err := ReadPostsCSV(&buf)
	if err != nil {
		t.Fatalf("ReadPostsCSV: %v", err)
	}
	if !reflect.DeepEqual(got, samplePosts()) {
		t.Errorf("round trip = %+v, want %+v", got, samplePosts())
	}
}

func TestReadPostsCSVColumnOrder(t *testing.T) {
	in := "title,subreddit,selftext,score,ups,downs,url,author,is_self,extra\n" +
		"Raid tonight,playrust,,-4,1,5,https://example.org,bob,false,x\n"
	got, err := ReadPostsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPostsCSV: %v", err)
	}
	want := []features.RawPost{{
		Author:    "bob",
		URL:       "https://example.org",
		Downs:     5,
		Ups:       1,
		Score:     0,
		Subreddit: "playrust",
		Title:     "Raid tonight",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReadPostsCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "author,subreddit,title\nbob,rust,hi\n"},
		{"bad bool", "is_self,author,url,downs,ups,score,selftext,subreddit,title\nmaybe,bob,,0,0,0,,rust,hi\n"},
		{"bad count", "is_self,author,url,downs,ups,score,selftext,subreddit,title\ntrue,bob,,x,0,0,,rust,hi\n"},
		{"short row", "is_self,author,url,downs,ups,score,selftext,subreddit,title\ntrue,bob\n"},
	}
	for _, tt := range tests {
		_, err := ReadPostsCSV(strings.NewReader(tt.in))
		if !errors.Is(err, features.ErrMalformedPost) {
			t.Errorf("%s: err = %v, want ErrMalformedPost", tt.name, err)
		}
	}
}

func TestListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), AuthorsFile)
	items := []string{"steveklabnik", "illogiq", "illogiq", ""}
	if err := SaveList(path, items); err != nil {
		t.Fatalf("SaveList: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "steveklabnik\nillogiq\nillogiq\n\n" {
		t.Errorf("file = %q", raw)
	}
	got, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("LoadList = %q, want %q", got, items)
	}

	var buf bytes.Buffer
	if err := WriteList(&buf, got); err != nil {
		t.Fatal(err)
	}
	if buf.String() != string(raw) {
		t.Errorf("rewrite = %q, want %q", buf.String(), raw)
	}
}

func TestReadListCRLF(t *testing.T) {
	got, err := ReadList(strings.NewReader("lazy\r\nfence\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"lazy", "fence"}) {
		t.Errorf("ReadList = %q", got)
	}
	if err := WriteList(&bytes.Buffer{}, []string{"a\nb"}); err == nil {
		t.Error("expected error for item with line break")
	}
}

func TestWriteMatrixCSV(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 0.5, 0, 2, 3, 1e-7})
	var buf bytes.Buffer
	if err := WriteMatrixCSV(&buf, m, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("WriteMatrixCSV: %v", err)
	}
	want := "a,b,c\n1,0.5,0\n2,3,1e-07\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	if err := WriteMatrixCSV(&buf, m, []string{"a"}); !errors.Is(err, features.ErrLengthMismatch) {
		t.Errorf("short header: err = %v", err)
	}

	buf.Reset()
	if err := WriteVectorCSV(&buf, []float64{0, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "0\n1\n1\n" {
		t.Errorf("vector = %q", buf.String())
	}
}

func TestPostStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenPostStore(ctx, filepath.Join(t.TempDir(), DatabaseFile))
	if err != nil {
		t.Fatalf("OpenPostStore: %v", err)
	}
	defer store.Close()

	posts := samplePosts()
	if err := store.Upsert(ctx, posts); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// Upserting again refreshes scores without duplicating rows.
	posts[0].Score = 40
	if err := store.Upsert(ctx, posts); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	all, err := store.Posts(ctx)
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Posts = %d posts, want 2", len(all))
	}
	if all[0].ID != "t3_abc" || all[0].Score != 40 || !all[0].IsSelf || all[0].Selftext != posts[0].Selftext {
		t.Errorf("first post = %+v", all[0])
	}
	if all[1].ID == "" || all[1].Title != "My base" || all[1].Downs != 2 || all[1].IsSelf {
		t.Errorf("second post = %+v", all[1])
	}

	play, err := store.Posts(ctx, "PlayRust")
	if err != nil {
		t.Fatal(err)
	}
	if len(play) != 1 || play[0].Author != "raider" {
		t.Errorf("Posts(PlayRust) = %+v", play)
	}

	both, err := store.Posts(ctx, "rust", "playrust")
	if err != nil {
		t.Fatal(err)
	}
	if len(both) != 2 {
		t.Errorf("Posts(rust, playrust) = %d posts, want 2", len(both))
	}
}
