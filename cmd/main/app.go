package main

import (
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/zhukovvlad/designfee-go/cmd/internal/config"
	"github.com/zhukovvlad/designfee-go/cmd/internal/server"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/estimate"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/export"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/session"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/usage"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"

	_ "github.com/lib/pq"
)

func main() {
	logger := logging.GetLogger()
	logger.Info("Starting Design Fee API...")

	// .env необязателен: в контейнере переменные задаются окружением
	if err := godotenv.Load(); err != nil {
		logger.Warnf("Warning: error loading .env file: %v", err)
	}

	cfg := config.GetConfig()

	var visits usage.Counter = usage.NewMemoryCounter()
	if cfg.Database.Source != "" {
		conn, err := sql.Open(cfg.Database.Driver, cfg.Database.Source)
		if err != nil {
			logger.Fatalf("error connecting to database: %v", err)
		}
		defer conn.Close()

		if err = conn.Ping(); err != nil {
			logger.Fatalf("error pinging database: %v", err)
		}

		logger.Info("Database connection established")
		visits = usage.NewPostgresCounter(conn, usage.VisitsCounter, logger)
	} else {
		logger.Info("DATABASE_URL не задан - счётчик посещений хранится в памяти")
	}

	estimates, repo := estimate.NewFromConfig(cfg, logger)
	sessions := session.NewStore(cfg.Sessions.TTL, logger)
	assembler := export.NewAssembler(cfg.Export.TemplatePath, logger)

	srv := server.NewServer(logger, cfg, sessions, estimates, repo, assembler, visits)

	serverAddress := fmt.Sprintf("%s:%s", cfg.Listen.BindIP, cfg.Listen.Port)
	logger.Infof("Starting server on %s", serverAddress)

	if err := srv.Start(serverAddress); err != nil {
		logger.Fatalf("error starting server: %v", err)
	}
}
