package internal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/chat"
	"github.com/2beens/fitassist/internal/config"
	"github.com/2beens/fitassist/internal/dashboard"
	"github.com/2beens/fitassist/internal/db"
	"github.com/2beens/fitassist/internal/goals"
	fitmcp "github.com/2beens/fitassist/internal/mcp"
	"github.com/2beens/fitassist/internal/middleware"
	"github.com/2beens/fitassist/internal/report"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/internal/tips"
	"github.com/2beens/fitassist/internal/users"
	"github.com/2beens/fitassist/internal/workouts"
	"github.com/2beens/fitassist/pkg"
)

const (
	sessionsCleanupInterval = 8 * time.Hour
	reportsUploadTimeout    = 30 * time.Second
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	dbPool       *pgxpool.Pool
	tipsManager  *tips.Manager
	reportsStore report.Store
	assistant    chat.Assistant
	contextCache *freecache.Cache

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBPassword              string
	RedisPassword           string
	AIApiKey                string
	S3AccessKeyID           string
	S3SecretAccessKey       string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.DBPassword,
		SSLMode:        cfg.PostgresSSLMode,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.NewRegistry(pgxpoolCollector)
	metricsManager := metrics.NewManager("fitassist", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(cfg.SessionTTL(), rdb)
	go func() {
		ticker := time.NewTicker(sessionsCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				cleaned, err := authService.ScanAndClean(ctx, now)
				if err != nil {
					log.Errorf("sessions scan and clean: %s", err)
					continue
				}
				log.Debugf("sessions scan and clean, removed: %d", cleaned)
			}
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitassist-service", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.AITimeout(),
	}

	if params.AIApiKey == "" {
		log.Warnln("assistant API key not set, chat will answer with the fallback reply")
	}
	baseURL := cfg.AIBaseURL
	if baseURL == "" {
		baseURL = chat.DefaultBaseURL
	}
	model := cfg.AIModel
	if model == "" {
		model = chat.DefaultModel
	}

	reportsStore, err := newReportsStore(ctx, cfg, params)
	if err != nil {
		return nil, fmt.Errorf("new reports store: %w", err)
	}

	tipsManager, err := newTipsManager(cfg.TipsCsvPath)
	if err != nil {
		return nil, fmt.Errorf("new tips manager: %w", err)
	}

	cacheSizeMB := cfg.ChatContextCacheSizeMB
	if cacheSizeMB <= 0 {
		cacheSizeMB = 10
	}

	return &Server{
		config:       cfg,
		dbPool:       dbPool,
		versionInfo:  params.VersionInfo,
		tipsManager:  tipsManager,
		reportsStore: reportsStore,
		assistant:    chat.NewCompletionsClient(baseURL, params.AIApiKey, model, tracedHttpClient),
		contextCache: freecache.NewCache(cacheSizeMB * 1024 * 1024),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(cfg.SessionTTL(), rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func newReportsStore(ctx context.Context, cfg *config.Config, params NewServerParams) (report.Store, error) {
	switch cfg.ReportsStore {
	case config.ReportsStoreS3:
		return report.NewS3Store(ctx, report.S3StoreParams{
			Bucket:          cfg.ReportsS3Bucket,
			Region:          cfg.ReportsS3Region,
			Endpoint:        cfg.ReportsS3Endpoint,
			AccessKeyID:     params.S3AccessKeyID,
			SecretAccessKey: params.S3SecretAccessKey,
			Timeout:         reportsUploadTimeout,
		})
	default:
		return report.NewDiskStore(cfg.ReportsDiskPath)
	}
}

func newTipsManager(csvPath string) (*tips.Manager, error) {
	if csvPath == "" {
		return tips.NewDefaultManager()
	}

	tipsCsvFile, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open tips file: %w", err)
	}
	defer func() {
		if err := tipsCsvFile.Close(); err != nil {
			log.Warnf("close tips csv file: %s", err)
		}
	}()

	return tips.NewManager(csv.NewReader(tipsCsvFile))
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
	}).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	usersRepo := users.NewRepo(s.dbPool)
	goalsRepo := goals.NewRepo(s.dbPool)
	workoutsRepo := workouts.NewRepo(s.dbPool)
	chatRepo := chat.NewRepo(s.dbPool)
	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	users.NewHandler(usersRepo, s.authService, pkg.DefaultPasswordCost).
		SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)
	workouts.NewHandler(workoutsRepo, s.metricsManager).SetupRoutes(r)
	goals.NewHandler(goalsRepo, s.metricsManager).SetupRoutes(r)

	dashboardService := dashboard.NewService(usersRepo, goalsRepo, workoutsRepo, chatRepo)
	dashboard.NewHandler(dashboardService).SetupRoutes(r)

	chatService := chat.NewService(chat.NewServiceParams{
		UsersRepo:       usersRepo,
		GoalsRepo:       goalsRepo,
		WorkoutsRepo:    workoutsRepo,
		LogsRepo:        chatRepo,
		Assistant:       s.assistant,
		Extractor:       chat.DocTextExtractor{},
		ContextCache:    s.contextCache,
		ContextCacheTTL: time.Duration(s.config.ChatContextCacheTTLSecs) * time.Second,
		MetricsManager:  s.metricsManager,
	})
	chat.NewHandler(chatService).
		SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.ChatRateLimitAllowedPerMin)

	assembler := report.NewAssembler(usersRepo, goalsRepo, workoutsRepo, chatRepo)
	reportService := report.NewService(assembler, report.PDFRenderer{}, s.reportsStore, s.metricsManager)
	report.NewHandler(reportService).SetupRoutes(r)

	tips.NewHandler(s.tipsManager).SetupRoutes(r)

	mcpService := fitmcp.NewContextService(goalsRepo, workoutsRepo, dashboardService, assembler)
	r.Handle("/mcp", fitmcp.NewHTTPHandler(mcpService)).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	// cached chat contexts must not outlive the data they describe
	r.Use(middleware.OnUserDataChanged(chatService.ForgetUserContext,
		"update-profile", "new-workout", "new-goal", "update-goal-progress", "update-goal-status",
	))
	r.Use(middleware.LimitAndDrainBody(chat.MaxAttachmentBytes + 2<<20))

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
