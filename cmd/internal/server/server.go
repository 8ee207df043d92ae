package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zhukovvlad/designfee-go/cmd/internal/config"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/estimate"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/export"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/rates"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/session"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/usage"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

type Server struct {
	router    *gin.Engine
	logger    *logging.Logger
	config    *config.Config
	sessions  *session.Store
	estimates *estimate.Service
	rates     *rates.Repository
	assembler *export.Assembler
	visits    usage.Counter
	now       func() time.Time
}

func NewServer(
	logger *logging.Logger,
	cfg *config.Config,
	sessions *session.Store,
	estimates *estimate.Service,
	repo *rates.Repository,
	assembler *export.Assembler,
	visits usage.Counter,
) *Server {
	server := &Server{
		logger:    logger,
		config:    cfg,
		sessions:  sessions,
		estimates: estimates,
		rates:     repo,
		assembler: assembler,
		visits:    visits,
		now:       time.Now,
	}
	router := gin.Default()

	// Настройка CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS", "PUT", "DELETE"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition"}
	if cfg.IsDebug != nil && *cfg.IsDebug {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
		router.Use(cors.New(corsConfig))
	} else if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
		router.Use(cors.New(corsConfig))
	} else {
		// cors.New не принимает пустой список origins: без настройки работаем same-origin
		logger.Warn("CORS allowed_origins не заданы в production - cross-origin запросы отклоняются")
	}

	router.GET("/home", server.HomeHandler)
	router.GET("/api/stats", server.getStatsHandler)

	// --- INTERNAL ---
	// Только service-auth и rate limiting.
	if cfg.Internal.APIKey != "" {
		internal := router.Group("/internal")
		internal.Use(ServiceBearerAuthMiddleware("operator", cfg.Internal.APIKey))
		internal.Use(ServiceRateLimitMiddleware(cfg.Internal.RequestsPerSecond, cfg.Internal.Burst))
		{
			internal.POST("/cache/invalidate", server.invalidateCacheHandler)
		}
	} else {
		logger.Warn("GO_SERVER_API_KEY не задан - маршруты /internal отключены")
	}

	// --- API V1 ---
	v1 := router.Group("/api/v1")
	{
		v1.GET("/options", server.optionsHandler)

		v1.POST("/sessions", server.createSessionHandler)
		v1.GET("/sessions/:id", server.getSessionHandler)
		v1.DELETE("/sessions/:id", server.deleteSessionHandler)
		v1.PUT("/sessions/:id/inputs", server.putInputsHandler)
		v1.DELETE("/sessions/:id/state", server.resetSessionHandler)

		v1.POST("/sessions/:id/staffing", server.computeStaffingHandler)
		v1.GET("/sessions/:id/periods", server.getPeriodsHandler)
		v1.POST("/sessions/:id/labor", server.computeLaborHandler)
		v1.POST("/sessions/:id/estimate", server.computeEstimateHandler)
		v1.GET("/sessions/:id/cover", server.getCoverHandler)
		v1.GET("/sessions/:id/export", server.exportSessionHandler)

		v1.POST("/estimates", server.statelessEstimateHandler)

		v1.GET("/rates/wages", server.getWagesHandler)
		v1.GET("/rates/insurance", server.getInsuranceHandler)
		v1.GET("/rates/norms/:phase", server.getNormsHandler)
	}

	server.router = router
	return server
}

func (s *Server) Start(address string) error {
	return s.router.Run(address)
}

// Router возвращает обработчик (для тестов и http.Server).
func (s *Server) Router() *gin.Engine {
	return s.router
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// statusFor сопоставляет ошибку сервисов с HTTP-статусом.
func statusFor(err error) int {
	var (
		validation   *apierrors.ValidationError
		notFound     *apierrors.NotFoundError
		unavailable  *apierrors.DataUnavailableError
		schema       *apierrors.SchemaMismatchError
		prerequisite *apierrors.PrerequisiteMissingError
		conflict     *apierrors.ConflictError
		template     *apierrors.TemplateNotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &schema):
		return http.StatusBadGateway
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &prerequisite), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &template):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ответ с ошибкой; 5xx логируются как ошибки, остальные как предупреждения.
func (s *Server) respondError(c *gin.Context, handler string, err error) {
	status := statusFor(err)
	logger := s.logger.WithField("handler", handler)
	if status >= http.StatusInternalServerError {
		logger.Errorf("Ошибка обработки запроса: %v", err)
	} else {
		logger.Warnf("Запрос отклонён (%d): %v", status, err)
	}
	c.JSON(status, errorResponse(err))
}
