// Package builder exposes a local engine over HTTP so batches can be driven
// from a machine other than the one holding the GPU.
package builder

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/uqff/internal/engine"
	"github.com/samcharles93/uqff/internal/logger"
)

var errOutsideRoot = errors.New("output must be a relative path inside the builder root")

// Server runs builds for remote drivers. Builds are serialized: a build
// loads a full model, so two at once would double peak memory.
type Server struct {
	engine engine.Engine
	root   string
	log    logger.Logger

	mu sync.Mutex
}

// NewServer returns a server writing artifacts below root.
func NewServer(eng engine.Engine, root string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{engine: eng, root: root, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST(engine.BuildsPath, s.handleBuild)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBuild(c *echo.Context) error {
	id := uuid.NewString()

	req, err := decodeJSON[engine.Request](c.Request().Body)
	if err != nil {
		return writeResult(c, http.StatusBadRequest, id, "", fmt.Errorf("decode request: %w", err))
	}
	if err := req.Validate(); err != nil {
		return writeResult(c, http.StatusBadRequest, id, "", err)
	}
	rel := req.Output
	if !filepath.IsLocal(rel) {
		return writeResult(c, http.StatusBadRequest, id, rel, errOutsideRoot)
	}
	req.Output = filepath.Join(s.root, rel)

	log := s.log.With("build", id, "model", req.ModelID, "scheme", req.Scheme.String())
	log.Info("build queued", "output", req.Output)

	s.mu.Lock()
	start := time.Now()
	err = s.engine.Build(c.Request().Context(), req)
	s.mu.Unlock()

	if err != nil {
		log.Error("build failed", "error", err)
		return writeResult(c, http.StatusInternalServerError, id, rel, err)
	}
	log.Info("build finished", "elapsed", time.Since(start).Round(time.Second))
	return writeResult(c, http.StatusOK, id, rel, nil)
}

func writeResult(c *echo.Context, status int, id, output string, err error) error {
	res := engine.BuildResult{ID: id, Status: engine.StatusSucceeded, Output: output}
	if err != nil {
		res.Status = engine.StatusFailed
		res.Error = err.Error()
	}
	return c.JSON(status, res)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
