package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"FoodAdvisor_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", sessionHeader, "X-Request-ID"},
		ExposeHeaders:    []string{sessionHeader, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Chat Routes
	e.POST("/chat", s.ChatHandler)
	e.DELETE("/chat/session", s.ResetSessionHandler)
	e.GET("/chat/ws", s.ChatSocketHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	foods, conditions := s.deps.Chat.Vocabulary().Len()
	report := map[string]interface{}{
		"status": "up",
		"vocabulary": map[string]int{
			"foods":      foods,
			"conditions": conditions,
		},
		"model":          s.modelHealth(),
		"session_store":  map[string]string{"backend": s.cfg.SessionBackend},
		"active_sockets": utility.ActiveClients(),
	}

	var mu sync.Mutex
	set := func(key string, value interface{}) {
		mu.Lock()
		report[key] = value
		mu.Unlock()
	}

	// Probes are best effort; each records its own status.
	g, grpCtx := errgroup.WithContext(ctx)

	if s.deps.DB != nil {
		g.Go(func() error {
			set("database", s.deps.DB.Health(grpCtx))
			return nil
		})
	}

	if p, ok := s.deps.Store.(interface{ Ping(context.Context) error }); ok {
		g.Go(func() error {
			status := map[string]string{"backend": s.cfg.SessionBackend, "status": "up"}
			if err := p.Ping(grpCtx); err != nil {
				status["status"] = "down"
				status["error"] = err.Error()
			}
			set("session_store", status)
			return nil
		})
	}

	g.Go(func() error {
		vm, err := mem.VirtualMemoryWithContext(grpCtx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read host memory")
			return nil
		}
		set("host", map[string]string{
			"memory_used_percent": strconv.FormatFloat(vm.UsedPercent, 'f', 1, 64),
		})
		return nil
	})

	_ = g.Wait()

	if !s.deps.Classifier.Ready() {
		report["status"] = "degraded"
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) modelHealth() map[string]interface{} {
	model := s.deps.Classifier.Model()
	if model == nil {
		return map[string]interface{}{"status": "not_loaded"}
	}
	return map[string]interface{}{
		"status": "loaded",
		"pairs":  model.Pairs(),
		"labels": model.Labels(),
	}
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		return next(c)
	}
}
