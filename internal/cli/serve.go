package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/culturallm/backend/config"
	"github.com/culturallm/backend/database"
	_ "github.com/culturallm/backend/docs"
	"github.com/culturallm/backend/internal/controller"
	"github.com/culturallm/backend/internal/jobs"
	"github.com/culturallm/backend/internal/logger"
	"github.com/culturallm/backend/internal/metrics"
	"github.com/culturallm/backend/internal/middleware"
	"github.com/culturallm/backend/internal/repository"
	"github.com/culturallm/backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// NewServeCmd builds the subcommand that runs the HTTP API.
func NewServeCmd(port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *port)
		},
	}
}

func runServer(ctx context.Context, portFlag string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	app := fx.New(
		fx.Supply(cfg),

		fx.Provide(
			database.NewDatabase,
			NewRegistry,
			func(reg *prometheus.Registry) *metrics.Metrics { return metrics.New(reg) },
			NewJobGuard,
			service.NewGeminiGenerator,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewThemeRepository,
			repository.NewQuestionRepository,
			repository.NewAnswerRepository,
			repository.NewValidationRepository,
			repository.NewMachineValidationRepository,
			repository.NewValidatedTagRepository,
		),

		fx.Provide(
			service.NewLLMService,
			service.NewScoringService,
			service.NewTagService,
			func(
				answers repository.AnswerRepository,
				questions repository.QuestionRepository,
				llm service.LLMService,
				guard jobs.Guard,
				m *metrics.Metrics,
			) service.MachineAnswerJob {
				budget := service.GenerationBudget(cfg.Generation.Timeout, cfg.Generation.MaxRetries)
				return service.NewMachineAnswerJob(answers, questions, llm, guard, budget, m)
			},
			service.NewValidationService,
			service.NewQuestionService,
			service.NewAnswerService,
			service.NewUserService,
		),

		fx.Provide(
			controller.NewValidationController,
			controller.NewQuestionController,
			controller.NewAnswerController,
			controller.NewUserController,
			controller.NewHealthController,
		),

		fx.Invoke(MigrateOnStart),
		fx.Invoke(CloseGeneratorOnStop),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start application")
		return err
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.Stop(stopCtx)
}

// NewRegistry returns a private registry carrying the runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewJobGuard uses redis when REDIS_ADDR is set and an in-process guard otherwise.
func NewJobGuard(lc fx.Lifecycle, cfg *config.Config) jobs.Guard {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, machine answer jobs are guarded in process")
		return jobs.NewMemoryGuard(cfg.Redis.GuardTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis ping failed, job claims will run unguarded until it recovers")
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return jobs.NewRedisGuard(client, cfg.Redis.GuardTTL)
}

func NewGinEngine(cfg *config.Config, reg *prometheus.Registry) *gin.Engine {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.UserIDHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	return r
}

func MigrateOnStart(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return runMigrations(ctx, db)
		},
	})
}

func CloseGeneratorOnStop(lc fx.Lifecycle, gen service.Generator) {
	closer, ok := gen.(io.Closer)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closer.Close()
		},
	})
}

// RegisterRoutesAndStartServer mounts the API and manages the server lifecycle.
// Pending machine answer jobs are drained after the listener stops.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	users repository.UserRepository,
	job service.MachineAnswerJob,
	validationCtrl *controller.ValidationController,
	questionCtrl *controller.QuestionController,
	answerCtrl *controller.AnswerController,
	userCtrl *controller.UserController,
	healthCtrl *controller.HealthController,
) {
	controller.RegisterRoutes(router, middleware.RequireUser(users),
		validationCtrl, questionCtrl, answerCtrl, userCtrl, healthCtrl)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CulturaLLM API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			if err := job.Wait(ctx); err != nil {
				log.Warn().Err(err).Msg("Machine answer jobs still running at shutdown")
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
