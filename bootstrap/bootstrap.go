package bootstrap

import (
	"dutchie-backend/internal/config"
	"dutchie-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// New builds the app for serverless deployments, where there is no CLI and no
// separate migrate step; the api handler imports this package rather than internal/.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, db, _, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		log.Warn().Str("env", cfg.Env).Msg("bootstrap: no database configured")
	}
	return app, nil
}
