// Package devserver is a local receiver for form submissions. It accepts the
// contact, newsletter and appointment payloads, validates them and answers in
// the shapes the submission controller understands, including scripted
// failures for exercising error panels.
package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/model"
)

// FailureMode scripts how the server answers valid submissions.
type FailureMode string

const (
	// FailNone accepts valid submissions.
	FailNone FailureMode = ""
	// FailServer answers 500 with a JSON message.
	FailServer FailureMode = "server"
	// FailValidation answers 422 with a field error for every submitted value.
	FailValidation FailureMode = "validation"
	// FailHTML answers 502 with an HTML body.
	FailHTML FailureMode = "html"
)

// ErrUnknownFailureMode is returned by ParseFailureMode.
var ErrUnknownFailureMode = errors.New("devserver: unknown failure mode")

// ParseFailureMode validates a mode name.
func ParseFailureMode(raw string) (FailureMode, error) {
	switch mode := FailureMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case FailNone, FailServer, FailValidation, FailHTML:
		return mode, nil
	}
	return FailNone, fmt.Errorf("%w: %q", ErrUnknownFailureMode, raw)
}

// Config configures a Server.
type Config struct {
	Addr           string
	Fail           FailureMode
	FailureMessage string
	Delay          time.Duration
	AllowOrigin    string
}

// DefaultConfig listens on localhost:8089 and accepts every valid request.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8089",
		FailureMessage: "The service is temporarily unavailable",
		AllowOrigin:    "*",
	}
}

// Submission is a request the server accepted.
type Submission struct {
	RequestID  string         `json:"requestId"`
	Category   model.Category `json:"category"`
	Values     map[string]any `json:"values"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the time source used to stamp submissions.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server receives submissions over HTTP.
type Server struct {
	cfg      Config
	engine   *gin.Engine
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	received []Submission
}

// New builds a Server and its routes.
func New(cfg Config, options ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		validate: newValidator(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), cors(cfg.AllowOrigin), errorHandler(s.logger))

	api := engine.Group("/api")
	api.POST("/contact", s.receive(model.CategoryContact))
	api.POST("/newsletter", s.receive(model.CategoryNewsletter))
	api.POST("/appointment", s.receive(model.CategoryAppointment))
	api.GET("/submissions", s.list)
	engine.GET("/healthz", func(c *gin.Context) {
		success(c, http.StatusOK, "ok", nil)
	})

	s.engine = engine
	return s
}

// Handler exposes the routes for embedding or httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Received returns the accepted submissions in arrival order.
func (s *Server) Received() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.received...)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", zap.String("addr", s.cfg.Addr), zap.String("fail", string(s.cfg.Fail)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("devserver: shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) receive(category model.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			_ = c.Error(badRequest("Unable to read request body", err))
			return
		}

		values := map[string]any{}
		if err := json.Unmarshal(body, &values); err != nil {
			_ = c.Error(badRequest("Request body must be a JSON object", err))
			return
		}

		req := requestFor(category)
		decoder := json.NewDecoder(bytes.NewReader(body))
		if err := decoder.Decode(req); err != nil {
			_ = c.Error(badRequest("Request body does not match the form", err))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			fields, ok := fieldErrors(err)
			if !ok {
				_ = c.Error(err)
				return
			}
			s.logger.Info("submission rejected",
				zap.String("category", string(category)),
				zap.Strings("fields", sortedKeys(fields)),
			)
			_ = c.Error(unprocessable("Please correct the highlighted fields", fields))
			return
		}

		if !s.wait(c.Request.Context()) {
			return
		}

		switch s.cfg.Fail {
		case FailServer:
			c.JSON(http.StatusInternalServerError, gin.H{"message": s.cfg.FailureMessage})
			return
		case FailHTML:
			c.Data(http.StatusBadGateway, "text/html; charset=utf-8", []byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
			return
		case FailValidation:
			fields := make(map[string][]string, len(values))
			for key := range values {
				if key == "submitTime" || key == "pageUrl" {
					continue
				}
				fields[key] = []string{s.cfg.FailureMessage}
			}
			_ = c.Error(unprocessable(s.cfg.FailureMessage, fields))
			return
		}

		submission := Submission{
			RequestID:  c.GetString(requestIDKey),
			Category:   category,
			Values:     values,
			ReceivedAt: s.now().UTC(),
		}
		s.mu.Lock()
		s.received = append(s.received, submission)
		s.mu.Unlock()

		s.logger.Info("submission received",
			zap.String("request_id", submission.RequestID),
			zap.String("category", string(category)),
		)
		success(c, http.StatusOK, "Your message has been sent successfully!", gin.H{"id": submission.RequestID})
	}
}

func (s *Server) list(c *gin.Context) {
	success(c, http.StatusOK, "ok", s.Received())
}

func (s *Server) wait(ctx context.Context) bool {
	if s.cfg.Delay <= 0 {
		return true
	}
	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
