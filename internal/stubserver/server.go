package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plantquery/plantquery/internal/api"
	"github.com/plantquery/plantquery/internal/logging"
	"github.com/plantquery/plantquery/internal/monitoring"
)

// Options configures the stub backend.
type Options struct {
	// AIAvailable is what /health reports as openai_available. The
	// stub never has a real model; flipping this exercises client
	// degraded-mode displays.
	AIAvailable bool

	// SessionTTL bounds how long an untouched server-side session
	// survives. Defaults to 24 hours.
	SessionTTL time.Duration

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Server is a development stand-in for the analysis backend. It
// implements the same wire contract: multipart session creation, chat,
// delete, health, and GraphML export, plus a prometheus endpoint.
type Server struct {
	router      *gin.Engine
	store       *store
	logger      *logging.Logger
	metrics     *monitoring.Metrics
	aiAvailable bool
}

// New assembles the router and its middleware.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	s := &Server{
		store:       newStore(opts.SessionTTL),
		logger:      logger,
		metrics:     metrics,
		aiAvailable: opts.AIAvailable,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(s.accessLog())
	router.Use(monitoring.Middleware(metrics))

	router.GET("/health", s.health)
	router.POST(api.PathCreateSession, s.createSession)
	router.POST(api.PathChat, s.chat)
	router.DELETE("/sessions/:id", s.deleteSession)
	router.GET("/sessions/:id/graphml", s.exportGraphML)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.router = router
	return s
}

// Handler exposes the router for embedding in httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("stub backend listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// SessionCount reports how many sessions the store currently holds.
func (s *Server) SessionCount() int {
	return s.store.count()
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
			"http://localhost:5175",
			"http://localhost:5176",
		},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
