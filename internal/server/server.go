// Package server exposes a classifier over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
)

// MaxBatch is the largest number of posts accepted by one predict request.
const MaxBatch = 1000

// Classifier is the part of a rustsub.Classifier the server needs.
type Classifier interface {
	Predict(posts []features.RawPost) ([]rustsub.Prediction, error)
	Info() rustsub.Info
}

// Server serves predictions.
type Server struct {
	classifier Classifier
	engine     *gin.Engine
}

// New creates a server in the given gin mode ("release", "debug" or "test").
func New(c Classifier, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{classifier: c, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/model", s.model)
	s.engine.POST("/predict", s.predict)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) model(c *gin.Context) {
	c.JSON(http.StatusOK, s.classifier.Info())
}

func (s *Server) predict(c *gin.Context) {
	var posts []features.RawPost
	if err := c.ShouldBindJSON(&posts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(posts) > MaxBatch {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many posts"})
		return
	}

	preds, err := s.classifier.Predict(posts)
	switch {
	case errors.Is(err, features.ErrMalformedPost), errors.Is(err, features.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		slog.Error("Prediction failed", "posts", len(posts), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}
	c.JSON(http.StatusOK, preds)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
