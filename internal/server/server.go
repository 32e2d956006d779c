package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dailynews/internal/config"
	"dailynews/internal/pipeline"
	"dailynews/internal/summarizer"
)

const (
	defaultTopics     = "finance,economy,politics"
	defaultHours      = 8
	maxRecordsCeiling = 250
)

// Server exposes the pipeline over HTTP for mobile clients. Its handler body
// is a single call into the orchestrator; no pipeline logic lives here.
type Server struct {
	echo   *echo.Echo
	orch   *pipeline.Orchestrator
	addr   string
	logger *zap.Logger
}

func New(cfg *config.Config, orch *pipeline.Orchestrator, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowCredentials: true,
	}))

	s := &Server{
		echo:   e,
		orch:   orch,
		addr:   cfg.Server.Addr,
		logger: logger,
	}

	e.GET("/health", s.handleHealth)
	e.GET("/summary", s.handleSummary)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	err := s.echo.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(c echo.Context) error {
	topicsParam := c.QueryParam("topics")
	if topicsParam == "" {
		topicsParam = defaultTopics
	}

	hours := defaultHours
	if raw := c.QueryParam("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "hours must be an integer"})
		}
		hours = parsed
	}

	maxRecords := 0
	if raw := c.QueryParam("maxrecords"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "maxrecords must be an integer"})
		}
		if parsed < 1 {
			parsed = 1
		}
		if parsed > maxRecordsCeiling {
			parsed = maxRecordsCeiling
		}
		maxRecords = parsed
	}

	req := pipeline.SummaryRequest{
		Topics:     strings.Split(topicsParam, ","),
		Hours:      hours,
		Region:     c.QueryParam("region"),
		Language:   c.QueryParam("language"),
		MaxRecords: maxRecords,
	}

	result, err := s.orch.ProduceSummary(c.Request().Context(), req)
	if err != nil {
		var vErr *pipeline.ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": vErr.Error()})
		}
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing meaningful to write.
			return err
		}
		var sErr *summarizer.SummarizationError
		if errors.As(err, &sErr) {
			s.logger.Error("summarization failed", zap.String("kind", string(sErr.Kind)), zap.Error(sErr))
			return c.JSON(http.StatusBadGateway, map[string]string{"message": sErr.Error()})
		}
		s.logger.Error("summary request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
