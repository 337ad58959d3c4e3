package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appconfig "archivechat/config"
	"archivechat/pkg/log"
	"archivechat/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	watch := flag.Bool("watch", false, "keep running and rebuild the index when the corpus changes")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables.")
	}

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	index, err := services.NewChromaIndex(ctx, cfg.Chroma.URL, cfg.Chroma.Collection, time.Duration(cfg.Chroma.TimeoutSecs)*time.Second)
	if err != nil {
		log.Fatal("failed to connect to chroma", err)
	}

	embedder := services.NewEmbedder(cfg.Embedding)
	splitter := services.NewSplitter(1000, 150)
	ingestion := services.NewIngestionService(embedder, index, splitter)

	chunks, err := ingestion.IngestCorpus(ctx, cfg.Corpus.Path)
	if err != nil {
		log.Fatal("ingestion failed", err)
	}
	log.Infof("ingested %d chunks from %s into collection %q", chunks, cfg.Corpus.Path, cfg.Chroma.Collection)

	if *watch {
		if err := ingestion.Watch(ctx, cfg.Corpus.Path); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal("corpus watcher failed", err)
		}
	}
}
