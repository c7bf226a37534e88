// Package server exposes the orchestration pipeline over a small REST
// API: start a scan, poll its status, fetch its consolidated report, and
// stop it. No authentication or rate limiting is provided; run it behind
// something that does.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/discover"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/history"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/report"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

// ConsolidatedFileName is the report filename written into each run's
// report directory.
const ConsolidatedFileName = "consolidated_report.json"

// Config carries the server's explicit dependencies.
type Config struct {
	Listen  string
	Scanner *scanner.Scanner
	History *history.Store
	Logger  *slog.Logger
}

// Server handles scan lifecycle requests.
type Server struct {
	cfg Config

	mu     sync.Mutex
	cancel map[string]context.CancelFunc
}

// New creates a Server from the given config.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	return &Server{
		cfg:    cfg,
		cancel: make(map[string]context.CancelFunc),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	api.POST("/scans", s.startScan)
	api.GET("/scans/:id", s.getScan)
	api.GET("/scans/:id/report", s.getReport)
	api.POST("/scans/:id/stop", s.stopScan)
	api.GET("/tools", s.listTools)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down cleanly.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.cfg.Listen,
		Handler:        s.Router(),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("api server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type scanRequest struct {
	Target string   `json:"target" binding:"required"`
	Tools  []string `json:"tools"`
}

func (s *Server) startScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	selection, err := types.ParseToolIDs(req.Tools)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.New().String()
	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel[id] = cancel
	s.mu.Unlock()

	s.cfg.History.Append(types.RunRecord{
		ID:        id,
		Target:    req.Target,
		State:     types.RunRunning,
		StartedAt: time.Now(),
	})

	go s.execute(runCtx, id, req.Target, selection)

	s.cfg.Logger.Info("scan accepted", "run_id", id, "target", req.Target)
	c.JSON(http.StatusAccepted, gin.H{"run_id": id})
}

// execute runs the full pipeline for one accepted request and records
// the outcome in the history store.
func (s *Server) execute(ctx context.Context, id, target string, selection []types.ToolID) {
	defer func() {
		s.mu.Lock()
		delete(s.cancel, id)
		s.mu.Unlock()
	}()

	result, err := s.cfg.Scanner.Run(ctx, scanner.Request{ID: id, Target: target, Tools: selection})
	rec := result.Record()

	switch {
	case err != nil && ctx.Err() != nil:
		rec.State = types.RunStopped
		rec.Error = "stopped by request"
	case err != nil:
		rec.State = types.RunFailed
		rec.Error = err.Error()
		s.cfg.Logger.Error("scan failed", "run_id", id, "error", err)
	default:
		reportPath := filepath.Join(result.ReportDir, ConsolidatedFileName)
		cons := report.NewConsolidator(result.ReportDir, s.cfg.Logger)
		if err := cons.Consolidate(reportPath); err == nil {
			rec.ReportPath = reportPath
		}
	}

	s.cfg.History.Update(rec)
	if err := s.cfg.History.Save(); err != nil {
		s.cfg.Logger.Warn("saving run history failed", "error", err)
	}
}

func (s *Server) getScan(c *gin.Context) {
	rec, ok := s.cfg.History.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) getReport(c *gin.Context) {
	rec, ok := s.cfg.History.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	if rec.ReportPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not ready"})
		return
	}
	data, err := os.ReadFile(rec.ReportPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("reading report: %v", err)})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) stopScan(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	cancel, active := s.cancel[id]
	s.mu.Unlock()

	if active {
		cancel()
		s.cfg.Logger.Info("scan stop requested", "run_id", id)
		c.JSON(http.StatusOK, gin.H{"status": "stopping"})
		return
	}

	if _, known := s.cfg.History.Get(id); known {
		c.JSON(http.StatusConflict, gin.H{"error": "scan already finished"})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
}

func (s *Server) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, discover.Probe())
}
