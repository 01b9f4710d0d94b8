package main

import (
	"context"
	"time"

	"health-chatbot/internal/config"
	"health-chatbot/internal/core"
	"health-chatbot/internal/db"
	httpserver "health-chatbot/internal/http"
	"health-chatbot/internal/llm"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer dbConn.Close()

	if err := db.Migrate(context.Background(), dbConn, cfg.Engine); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.WithField("engine", cfg.Engine).Info("database ready")

	store := db.NewStore(dbConn, cfg.Engine)
	client := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
	chat := core.NewChatService(store, client, cfg.HistoryLimit)
	srv := httpserver.NewServer(store, chat)

	log.WithFields(log.Fields{"port": cfg.ListenPort, "model": cfg.GroqModel}).Info("listening")
	if err := srv.Router().Run(":" + cfg.ListenPort); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
