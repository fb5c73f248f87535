// Package web serves the local activity view: a small HTML page plus the
// JSON endpoints it polls.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Loskoss/Productivity-Tracker/internal/log"
	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

// StatusSource is the read-only slice of the tracker the web view needs.
type StatusSource interface {
	CurrentActivity() *model.Activity
	ListForDate(day time.Time) []*model.Activity
}

// Server hosts the web view over a plain http.Server so it can shut down
// gracefully alongside the tracker.
type Server struct {
	srv *http.Server
}

// NewServer builds the gin engine and wires the routes.
func NewServer(addr string, source StatusSource) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinLogger())

	registerRoutes(r, source)

	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: r,
		},
	}
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// URL returns the base URL of the web view.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s", s.srv.Addr)
}

// ListenAndServe blocks serving the view. http.ErrServerClosed is swallowed;
// any other error is returned.
func (s *Server) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// registerRoutes mirrors the original desktop app's view endpoints.
func registerRoutes(r *gin.Engine, source StatusSource) {
	r.GET("/", serveIndex)
	r.GET("/activities", listActivities(source))
	r.GET("/current_activity", currentActivity(source))
	r.GET("/activity/:name", activityByName(source))
}

// listActivities returns the session for the requested date, defaulting to
// today. Response shape matches the persisted session record.
func listActivities(source StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		day := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.ParseInLocation(timecalc.DateKey, raw, time.Local)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw)})
				return
			}
			day = parsed
		}

		c.JSON(http.StatusOK, gin.H{
			"date":       day.Format(timecalc.DateKey),
			"activities": source.ListForDate(day),
		})
	}
}

// currentActivity reports the in-progress activity, or a placeholder when
// nothing is being tracked.
func currentActivity(source StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := source.CurrentActivity()
		if a == nil {
			c.JSON(http.StatusOK, gin.H{
				"name":         "No activity",
				"details":      gin.H{},
				"window_title": "",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":         a.Name,
			"details":      a.Details,
			"window_title": a.Details[model.DetailWindowTitle],
		})
	}
}

// activityByName returns one of today's activities by its normalized name.
func activityByName(source StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		for _, a := range source.ListForDate(time.Now()) {
			if a.Name == name {
				c.JSON(http.StatusOK, a)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("activity %s not found", name)})
	}
}
