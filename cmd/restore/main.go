// server/cmd/restore/main.go
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"motohub-api-server/config"
	"motohub-api-server/internal/backup"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/docstore"
	"motohub-api-server/internal/logger"
)

func main() {
	file := flag.StringP("file", "f", "backup.json", "backup file to restore")
	dryRun := flag.Bool("dry-run", false, "parse and count documents without writing")
	only := flag.StringSlice("only", nil, "restore only these top-level collections (comma separated)")
	configDir := flag.String("config", "./config", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	logg := logger.New(cfg.Log)

	in, err := os.Open(*file)
	if err != nil {
		logg.WithError(err).Fatal("Failed to open backup file")
	}
	defer in.Close()

	f, err := backup.Read(in)
	if err != nil {
		logg.WithError(err).Fatal("Failed to parse backup file")
	}

	ctx := context.Background()
	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logg.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	svc := backup.NewService(docstore.New(db), logg)
	stats, err := svc.Restore(ctx, f, backup.RestoreOptions{DryRun: *dryRun, Only: *only})
	if err != nil {
		logg.WithError(err).Fatal("Restore failed")
	}

	verb := "Restored"
	if *dryRun {
		verb = "Would restore"
	}
	for _, path := range stats.Paths() {
		fmt.Printf("%-48s %d\n", path, stats.Counts[path])
	}
	fmt.Printf("%s %d documents from %s (backup taken %s)\n", verb, stats.Total(), *file, f.Timestamp)
	if stats.GeneratedIDs > 0 {
		fmt.Printf("%d documents had no id and were given a new one\n", stats.GeneratedIDs)
	}
}
