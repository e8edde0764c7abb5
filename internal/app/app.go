package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/controller"
	"hilfo_survey_backend/internal/repository"
	"hilfo_survey_backend/internal/service"
	"hilfo_survey_backend/pkg/catalogwatcher"
	"hilfo_survey_backend/pkg/database"
	"hilfo_survey_backend/pkg/logger"
	"hilfo_survey_backend/pkg/monitoring"
	"hilfo_survey_backend/pkg/security"
	"hilfo_survey_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	registry       *service.SessionRegistry
	stopBackground context.CancelFunc
}

type services struct {
	flow     *service.FlowService
	registry *service.SessionRegistry
	export   *service.ExportService
	auth     *service.AuthService
}

type controllers struct {
	survey *controller.SurveyController
	admin  *controller.AdminController
	health *controller.HealthController
}

func (a *App) initServices(cat *catalog.Catalog, db *gorm.DB, rdb *redis.Client) (*services, error) {
	scoring := service.NewScoringService()
	render := service.NewRenderService()
	flow := service.NewFlowService(cat, scoring, render)

	storage, err := service.NewStorageProvider(a.Config)
	if err != nil {
		return nil, err
	}

	responseRepo := repository.NewResponseRepository(db)
	export := service.NewExportService(responseRepo, storage, flow, a.Config.Study.Key)

	idle := a.Config.Study.IdleTimeout()
	snapshots := repository.NewSnapshotRepository(rdb, idle*2)
	registry := service.NewSessionRegistry(flow, snapshots, export, idle)

	return &services{
		flow:     flow,
		registry: registry,
		export:   export,
		auth:     service.NewAuthService(a.Config),
	}, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		survey: controller.NewSurveyController(s.registry, a.Config),
		admin:  controller.NewAdminController(s.auth, s.export, s.flow, a.Config),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	// A study never starts against invalid catalogs; any load error
	// here is fatal to the whole process.
	cat, err := catalog.Load(cfg.Study.ItemBankPath, cfg.Study.PagePlanPath, cfg.Study.FieldsPath)
	if err != nil {
		logger.Log.Fatal("Failed to load study catalogs", zap.Error(err))
	}
	logger.Log.Info("Study catalogs loaded",
		zap.String("study", cfg.Study.Key),
		zap.Int("items", cat.Items.Len()),
		zap.Int("pages", len(cat.Plan.Pages)),
		zap.Int("fields", len(cat.Fields)))

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	svcs, err := app.initServices(cat, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.registry = svcs.registry
	ctrls := app.initControllers(svcs, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("hilfo-survey", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, cfg)

	bgCtx, cancel := context.WithCancel(context.Background())
	app.stopBackground = cancel
	svcs.registry.StartReaper(bgCtx, cfg.Study.ReapInterval())

	// Catalog edits on disk swap in atomically once they validate; a
	// broken edit keeps the running catalog.
	catalogPaths := []string{cfg.Study.ItemBankPath, cfg.Study.PagePlanPath, cfg.Study.FieldsPath}
	go func() {
		err := catalogwatcher.Watch(bgCtx, catalogPaths, func() error {
			fresh, err := catalog.Load(cfg.Study.ItemBankPath, cfg.Study.PagePlanPath, cfg.Study.FieldsPath)
			if err != nil {
				return err
			}
			svcs.flow.SwapCatalog(fresh)
			return nil
		})
		if err != nil {
			logger.Log.Warn("catalog watcher stopped", zap.Error(err))
		}
	}()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopBackground != nil {
		a.stopBackground()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
