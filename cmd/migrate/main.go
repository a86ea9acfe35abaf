package main

import (
	"flag"
	"fmt"
	"os"

	"shoe-store/internal/config"
	"shoe-store/internal/database"
	"shoe-store/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate [-dir migrations] up|down|status\n")
	flag.PrintDefaults()
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	dir := flag.String("dir", cfg.Server.MigrationsDir, "migrations directory")
	flag.Usage = usage
	flag.Parse()

	command := flag.Arg(0)
	switch {
	case flag.NArg() != 1:
		usage()
		os.Exit(2)
	case command != database.MigrateUp && command != database.MigrateDown && command != database.MigrateStatus:
		usage()
		os.Exit(2)
	}

	log := logger.NewWithDefaults()
	defer log.Sync()

	dbService, err := database.New(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	if err := database.Migrate(dbService.DB(), *dir, command, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("Migration command finished", zap.String("command", command))
}
