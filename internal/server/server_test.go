package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
)

type fakeClassifier struct {
	err error
}

func (f *fakeClassifier) Predict(posts []features.RawPost) ([]rustsub.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(posts) == 0 {
		return nil, features.ErrEmptyBatch
	}
	if err := features.Validate(posts); err != nil {
		return nil, err
	}
	out := make([]rustsub.Prediction, len(posts))
	for i, p := range posts {
		sub := features.SubRust
		if !p.IsSelf {
			sub = features.SubPlayRust
		}
		out[i] = rustsub.Prediction{ID: p.ID, Title: p.Title, Author: p.Author, Score: 0.5, Subreddit: sub}
	}
	return out, nil
}

func (f *fakeClassifier) Info() rustsub.Info {
	return rustsub.Info{ID: "model-1", Posts: 42, Columns: 38, Threshold: 0.6, Classes: []string{"rust", "playrust"}}
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := New(&fakeClassifier{}, "test")
	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestModel(t *testing.T) {
	s := New(&fakeClassifier{}, "test")
	rec := do(t, s, http.MethodGet, "/model", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info rustsub.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Equal(t, "model-1", info.ID)
	require.Equal(t, 38, info.Columns)
	require.Equal(t, []string{"rust", "playrust"}, info.Classes)
}

func TestPredict(t *testing.T) {
	s := New(&fakeClassifier{}, "test")
	body := `[
		{"name":"t3_a","is_self":true,"author":"crab","subreddit":"rust","title":"Lifetimes","selftext":"fn main() {}"},
		{"name":"t3_b","is_self":false,"author":"raider","subreddit":"playrust","title":"Raided","url":"https://i.imgur.com/x.png"}
	]`
	rec := do(t, s, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preds []rustsub.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preds))
	require.Len(t, preds, 2)
	require.Equal(t, "t3_a", preds[0].ID)
	require.Equal(t, "rust", preds[0].Subreddit)
	require.Equal(t, "playrust", preds[1].Subreddit)
}

func TestPredictUnlabeled(t *testing.T) {
	s := New(&fakeClassifier{}, "test")
	rec := do(t, s, http.MethodPost, "/predict", `[{"author":"x","title":"new","selftext":"borrow checker question","is_self":true}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preds []rustsub.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preds))
	require.Len(t, preds, 1)
	require.Equal(t, "rust", preds[0].Subreddit)
}

func TestPredictBadRequest(t *testing.T) {
	s := New(&fakeClassifier{}, "test")

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"not an array", `{"author":"crab"}`},
		{"empty batch", `[]`},
		{"missing author", `[{"subreddit":"rust","title":"x"}]`},
		{"missing author without subreddit", `[{"title":"x"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			require.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestPredictTooLarge(t *testing.T) {
	s := New(&fakeClassifier{}, "test")
	post := `{"author":"crab","subreddit":"rust","title":"x"}`
	body := "[" + strings.Repeat(post+",", MaxBatch) + post + "]"
	rec := do(t, s, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPredictInternalError(t *testing.T) {
	s := New(&fakeClassifier{err: errors.New("boom")}, "test")
	rec := do(t, s, http.MethodPost, "/predict", `[{"author":"crab","subreddit":"rust","title":"x"}]`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}
