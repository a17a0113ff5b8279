package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"recipes-backend/internal/media"
	"recipes-backend/internal/recipes"
	"recipes-backend/internal/services/health"
	"recipes-backend/internal/shared/config"
	"recipes-backend/internal/shared/metrics"
	"recipes-backend/internal/shared/server"
	"recipes-backend/internal/shared/storage/db"
	"recipes-backend/internal/uploads"
	"recipes-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Registry       *prometheus.Registry
	Backend        media.Backend
	Uploader       *media.Uploader
	RecipesRepo    recipes.Repo
	UsersRepo      users.Repo
	RecipesService *recipes.Service
	UsersService   *users.Service
	UploadHandler  *uploads.Handler
	RecipeHandler  *recipes.Handler
	UserHandler    *users.Handler
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = config.StoreLocal
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := BuildBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build storage backend: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	uploadMetrics, err := metrics.NewUploadMetrics(registry)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Registry: registry,
		Backend:  backend,
		Uploader: media.NewUploader(backend, uploadMetrics),
	}
	buildServices(app)

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	var staticDir string
	if backend.Name() == "local" {
		staticDir = cfg.LocalStoreDir
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Health:        health.NewService(pinger, backend.Name()),
		RecipeHandler: app.RecipeHandler,
		UserHandler:   app.UserHandler,
		UploadHandler: app.UploadHandler,
		Gatherer:      registry,
		StaticDir:     staticDir,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.RecipesRepo = &recipes.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.RecipesRepo = recipes.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	app.UploadHandler = uploads.NewHandler(app.Uploader, uploads.Options{
		Folders:      app.Config.UploadFolders,
		MaxFileBytes: Policy(app.Config).MaxSizeBytes,
	})

	app.RecipesService = &recipes.Service{Repo: app.RecipesRepo}
	app.UsersService = users.NewService(app.UsersRepo)
	app.RecipeHandler = recipes.NewHandler(app.RecipesService,
		app.UploadHandler.Middleware("recipes", false, recipes.PictureField))
	app.UserHandler = users.NewHandler(app.UsersService,
		app.UploadHandler.Middleware("users", false, users.PictureField))
}
