// server/cmd/backup/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"motohub-api-server/config"
	"motohub-api-server/internal/backup"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/docstore"
	"motohub-api-server/internal/logger"
)

func main() {
	out := flag.StringP("out", "o", "backup.json", "file to write the backup to")
	collections := flag.StringSlice("collections", nil, "top-level collections to export (default: all)")
	configDir := flag.String("config", "./config", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	logg := logger.New(cfg.Log)

	ctx := context.Background()
	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logg.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	svc := backup.NewService(docstore.New(db), logg)
	f, err := svc.Export(ctx, *collections)
	if err != nil {
		logg.WithError(err).Fatal("Export failed")
	}

	w, err := os.Create(*out)
	if err != nil {
		logg.WithError(err).Fatal("Failed to create output file")
	}
	if err := backup.Write(w, f); err != nil {
		w.Close()
		logg.WithError(err).Fatal("Failed to write backup")
	}
	if err := w.Close(); err != nil {
		logg.WithError(err).Fatal("Failed to write backup")
	}

	names := make([]string, 0, len(f.Collections))
	for name := range f.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-24s %d\n", name, len(f.Collections[name]))
	}
	fmt.Printf("Wrote %s\n", *out)
}
