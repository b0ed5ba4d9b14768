package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"servicehours/internal/config"
	"servicehours/internal/database"
	"servicehours/internal/logging"
	"servicehours/internal/models"
	"servicehours/internal/service"
	"servicehours/internal/slots"

	"github.com/rs/zerolog"
)

// env is what a single command needs: config, a logger and an open database.
type env struct {
	cfg    *config.Config
	logger *zerolog.Logger
	db     *database.DB
	closer io.Closer
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// stdout занят результатом команды
	if !strings.EqualFold(strings.TrimSpace(cfg.Logging.Output), "file") {
		cfg.Logging.Output = "stderr"
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, db: db, closer: closer}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// slotService generates directly from the database; the CLI never reads the shared cache.
func (e *env) slotService() (*service.SlotService, error) {
	loc, err := e.cfg.Location()
	if err != nil {
		return nil, err
	}
	return service.NewSlotService(e.db, e.db, nil, slots.SystemClock, loc, e.logger), nil
}

func parseDate(raw string, today time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today, nil
	}
	date, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", raw)
	}
	return date, nil
}
