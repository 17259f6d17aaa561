package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/db"
	gymplanmcp "github.com/2beens/gymplan/internal/mcp"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/internal/planner"
	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/internal/progress"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/textgen"
	"github.com/2beens/gymplan/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

const (
	coachAllowedPerMin = 20
	// generation holds the in-flight lock at most this long
	generateInFlightTTL = 3 * time.Minute
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	gatewaySecret     string // shared with the identity provider's gateway
	mcpSecret         string
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	textGen     textgen.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	GatewaySecret           string
	MCPSecret               string
	LLMAPIKey               string
	VersionInfo             string
	RedisPassword           string
	PostgresUser            string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
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
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymplan-backend")
	if err != nil {
		return nil, err
	}

	client, err := textgen.New(ctx, textgen.Config{
		Provider: params.Config.LLMProvider,
		BaseURL:  params.Config.LLMBaseURL,
		Model:    params.Config.LLMModel,
		APIKey:   params.LLMAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("new text generation client: %w", err)
	}

	return &Server{
		config:        params.Config,
		dbPool:        dbPool,
		gatewaySecret: params.GatewaySecret,
		mcpSecret:     params.MCPSecret,
		versionInfo:   params.VersionInfo,

		redisClient: rdb,
		textGen:     textgen.NewInstrumentedClient(client, params.Config.LLMProvider, metricsManager),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

// routes groups the handlers and the middleware dependencies of the main router.
type routes struct {
	catalog  *catalog.Handler
	plans    *plans.Handler
	progress *progress.Handler
	mcp      http.Handler

	gatewaySecret    string
	mcpSecret        string
	versionInfo      string
	allowedOrigins   []string
	generatePerMin   int
	rateLimiter      middleware.RequestRateLimiter
	generateInFlight func(next http.Handler) http.Handler
	metricsManager   *metrics.Manager
}

func (s *Server) routerSetup() *mux.Router {
	exercisesRepo := catalog.NewRepo(s.dbPool)
	exercises := catalog.NewCachedStore(exercisesRepo, s.config.CatalogCacheSizeMB, s.config.CatalogCacheTTL)

	reconciler := planner.NewReconciler(exercises, s.textGen, planner.Options{
		Temperature: s.config.LLMTemperature,
		MaxTokens:   s.config.LLMMaxTokens,
		Timeout:     s.config.GenerationTimeout,
	})
	plansStore := plans.NewStore(s.dbPool)

	coach := progress.NewCoachService(
		progress.NewRepo(s.dbPool),
		s.textGen,
		s.config.LLMTemperature,
		s.config.LLMMaxTokens,
		s.config.GenerationTimeout,
	)

	mcpServer := gymplanmcp.NewServer(
		gymplanmcp.NewPoolSchemaRepo(s.dbPool),
		exercises,
		coach,
		plansStore,
	)

	return newRouter(routes{
		catalog:  catalog.NewHandler(exercises),
		plans:    plans.NewHandler(reconciler, plansStore, s.metricsManager),
		progress: progress.NewHandler(coach),
		mcp:      gymplanmcp.NewHTTPHandler(mcpServer),

		gatewaySecret:    s.gatewaySecret,
		mcpSecret:        s.mcpSecret,
		versionInfo:      s.versionInfo,
		allowedOrigins:   s.config.AllowedOrigins,
		generatePerMin:   s.config.GenerateAllowedPerMin,
		rateLimiter:      redis_rate.NewLimiter(s.redisClient),
		generateInFlight: middleware.InFlightGuard(s.redisClient, "plans-generate", generateInFlightTTL),
		metricsManager:   s.metricsManager,
	})
}

func newRouter(rt routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "gymplan")
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, rt.versionInfo)
	}).Methods("GET").Name("version")

	r.HandleFunc("/exercises", rt.catalog.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises", rt.catalog.HandleCreate).Methods("POST", "OPTIONS").Name("new-exercise")

	generate := middleware.RateLimit(rt.rateLimiter, "plans-generate", rt.generatePerMin, rt.metricsManager)(
		rt.generateInFlight(http.HandlerFunc(rt.plans.HandleGenerate)),
	)
	r.Handle("/plans/generate", generate).Methods("POST", "OPTIONS").Name("generate-plan")
	r.HandleFunc("/plans", rt.plans.HandleList).Methods("GET", "OPTIONS").Name("list-plans")
	r.HandleFunc("/plans/{id:[0-9]+}", rt.plans.HandleGet).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/plans/{id:[0-9]+}/activate", rt.plans.HandleActivate).Methods("POST", "OPTIONS").Name("activate-plan")
	r.HandleFunc("/plans/{id:[0-9]+}/next", rt.plans.HandleNext).Methods("GET", "OPTIONS").Name("next-workout")
	r.HandleFunc("/plans/{id:[0-9]+}/workouts/{wid:[0-9]+}", rt.plans.HandleDeleteWorkout).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/plans/{id:[0-9]+}/workouts/{wid:[0-9]+}/move", rt.plans.HandleMoveWorkout).Methods("POST", "OPTIONS").Name("move-workout")
	r.HandleFunc("/plans/{id:[0-9]+}/workouts/{wid:[0-9]+}/complete", rt.plans.HandleComplete).Methods("POST", "OPTIONS").Name("complete-workout")

	r.HandleFunc("/progress/summary", rt.progress.HandleSummary).Methods("GET", "OPTIONS").Name("progress-summary")
	chat := middleware.RateLimit(rt.rateLimiter, "coach-chat", coachAllowedPerMin, rt.metricsManager)(
		http.HandlerFunc(rt.progress.HandleChat),
	)
	r.Handle("/coach/chat", chat).Methods("POST", "OPTIONS").Name("coach-chat")

	r.PathPrefix("/mcp").Handler(middleware.MCPSecretCheck(rt.mcpSecret)(rt.mcp)).Name("mcp")

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(rt.gatewaySecret)

	r.Use(middleware.PanicRecovery(rt.metricsManager))
	r.Use(middleware.RequestMetrics(rt.metricsManager))
	r.Use(middleware.Cors(rt.allowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LogRequest())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler: router,
		Addr:    ipAndPort,
		// plan generation runs several text generation calls
		WriteTimeout: 3 * time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
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

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	// stop taking requests before closing what they use
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics http server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
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

	return err
}
