package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonathan/pts-radar/internal/export"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/pipeline"
	"github.com/jonathan/pts-radar/internal/schemas"
	"github.com/jonathan/pts-radar/internal/types"
)

// Query parameter names accepted by the surge endpoints.
const (
	queryPctMin   = "pct_min"
	queryVolMin   = "vol_min"
	queryMaxPages = "max_pages"
	queryFullScan = "full_scan"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseParams reads run parameters from the query string, falling back to
// the configured defaults for absent values.
func (s *Server) parseParams(c *gin.Context) (types.RunParams, error) {
	fullScan := false
	if raw, ok := c.GetQuery(queryFullScan); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return types.RunParams{}, &ErrValidation{Field: queryFullScan, Message: "must be a boolean"}
		}
		fullScan = v
	}
	return pipeline.ParseRequest(
		c.DefaultQuery(queryPctMin, s.config.Defaults.PctMin),
		c.DefaultQuery(queryVolMin, s.config.Defaults.VolMin),
		c.DefaultQuery(queryMaxPages, s.config.Defaults.MaxPages),
		fullScan,
	)
}

// handleSurges runs the pipeline and returns the schema-checked result.
func (s *Server) handleSurges(c *gin.Context) {
	params, err := s.parseParams(c)
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	s.runMu.Lock()
	result, err := s.runner.Run(c.Request.Context(), params)
	s.runMu.Unlock()
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	body, err := export.MarshalRun(result)
	if err != nil {
		s.errorResponse(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// handleSurgesStream runs the pipeline and streams step events over SSE,
// ending with a complete event carrying the result or an error event.
func (s *Server) handleSurgesStream(c *gin.Context) {
	params, err := s.parseParams(c)
	if err != nil {
		s.errorResponse(c, err)
		return
	}
	if !s.runMu.TryLock() {
		s.errorResponse(c, ErrRunInProgress)
		return
	}
	defer s.runMu.Unlock()

	sse, err := NewSSEWriter(c.Writer)
	if err != nil {
		s.errorResponse(c, err)
		return
	}
	c.Status(http.StatusOK)

	runner := s.runner.WithProgress(func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			s.logger.Warn("Error writing SSE event", logger.Error(err))
		}
	})

	result, err := runner.Run(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		sse.WriteError(err)
		return
	}

	data, err := json.Marshal(result)
	if err == nil {
		err = schemas.ValidateRun(data)
	}
	if err != nil {
		_ = c.Error(err)
		sse.WriteError(err)
		return
	}
	if err := sse.WriteRaw(eventComplete, data); err != nil {
		s.logger.Warn("Error writing SSE event", logger.Error(err))
	}
}

func errorBody(err error) gin.H {
	return gin.H{
		"error": err.Error(),
		"code":  errorCode(err),
	}
}

// errorResponse writes the JSON error for err and records it on the context.
func (s *Server) errorResponse(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(HTTPStatus(err), errorBody(err))
}
