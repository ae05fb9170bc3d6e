package router

import (
	"net/http"

	authsvc "dutchie-backend/internal/application/auth"
	dealsvc "dutchie-backend/internal/application/deals"
	usersvc "dutchie-backend/internal/application/user"
	"dutchie-backend/internal/config"
	"dutchie-backend/internal/infrastructure/database"
	authhandler "dutchie-backend/internal/interfaces/handlers/auth"
	dealhandler "dutchie-backend/internal/interfaces/handlers/deals"
	healthhandler "dutchie-backend/internal/interfaces/handlers/health"
	userhandler "dutchie-backend/internal/interfaces/handlers/user"
	"dutchie-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// NewDealService wires the deal engine to the GORM stores.
func NewDealService(db *gorm.DB, cfg config.DealsConfig) *dealsvc.Service {
	return &dealsvc.Service{
		Items:    &database.DealStore{DB: db},
		Ratings:  &database.RatingStore{DB: db},
		Likes:    &database.LikeStore{DB: db},
		Catalog:  database.Catalog{DB: db},
		Location: cfg.Location,
		Timeout:  cfg.FetchTimeout,
		MaxLimit: cfg.MaxLimit,
	}
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
		CookieDomain:      cfg.CookieDomain,
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(middleware.Tracing())
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil {
		uh := &userhandler.Handlers{Service: &usersvc.Service{DB: db}, Rdb: rdb, Config: sessionCfg}
		app.Post("/api/v1/users/signup", uh.Signup)
		app.Get("/api/v1/users/nickname", uh.CheckNickname)

		dh := &dealhandler.Handlers{
			Service:      NewDealService(db, cfg.Deals),
			DefaultLimit: cfg.Deals.DefaultLimit,
			BrowsePolicy: cfg.Deals.BrowsePolicy,
			SearchPolicy: cfg.Deals.SearchPolicy,
		}
		cg := app.Group("/api/v1/commerce")
		cg.Get("/list", dh.List)
		cg.Post("/like", middleware.RequireAuth(), dh.Like)
		cg.Get("/:buyId", dh.Detail)
		app.Get("/api/v1/search/commerce", dh.Search)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
