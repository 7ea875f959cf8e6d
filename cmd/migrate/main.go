// Command migrate applies the SQL migrations in db/migrations.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/photo-ratings/internal/config"
	"github.com/Clark-Hu/photo-ratings/internal/logging"
	"github.com/Clark-Hu/photo-ratings/internal/store"
)

func main() {
	dir := flag.String("dir", "db/migrations", "directory holding *.up.sql files")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, err := logging.New(*level, "console", "migrate")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.LoadDatabase()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(db.DBConnTimeoutSecs)*time.Second+time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, db.DBURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer conn.Close(context.Background())

	applied, err := store.Migrate(ctx, conn, *dir)
	if err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	for _, path := range applied {
		logger.Info("applied migration", zap.String("file", filepath.Base(path)))
	}
}
