// Package statusapi exposes the PoolManager's diagnostic snapshot over
// HTTP, for operators and liveness probes that would otherwise have to
// grep log lines.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/poolmanager"
)

// StatsSource is the subset of *poolmanager.Manager the server depends on.
type StatsSource interface {
	Stats() poolmanager.Stats
}

// Server serves GET /status with the current PoolManager snapshot.
type Server struct {
	log    lib.ILogger
	source StatsSource
	srv    *http.Server
}

// New builds a Server listening on addr. It does not start listening until
// Run is called.
func New(addr string, source StatsSource, log lib.ILogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		log:    log,
		source: source,
		srv:    &http.Server{Addr: addr, Handler: router},
	}

	router.GET("/status", s.handleStatus)
	router.GET("/healthz", s.handleHealthz)
	return s
}

// Run serves until ctx is canceled, then shuts down with a 5s grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("status api listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Stats())
}

func (s *Server) handleHealthz(c *gin.Context) {
	stats := s.source.Stats()
	if stats.Running && !stats.Connected {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "disconnected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
