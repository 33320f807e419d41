package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"watchreel/config"
	"watchreel/handlers"
	"watchreel/models"
	"watchreel/services/catalog"
	"watchreel/services/posters"
	"watchreel/services/snapshot"
	"watchreel/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default: ./watchreel.yaml)")
		moviesOnly  = flag.Bool("movies", false, "ingest the film snapshot only")
		seriesOnly  = flag.Bool("series", false, "ingest the series snapshot only")
		serve       = flag.Bool("serve", false, "run the lookup server instead of the batch pipeline")
		addr        = flag.String("addr", "", "listen address for -serve (overrides config)")
	)
	flag.Parse()

	if *moviesOnly && *seriesOnly {
		log.Fatal("[main] -movies and -series are mutually exclusive")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	if cfg.Logging.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
	}

	fs := afero.NewOsFs()
	client := catalog.NewClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.ImageBaseURL,
		cfg.Catalog.Token,
		cfg.Catalog.Region,
		time.Duration(cfg.Catalog.RequestDelayMS)*time.Millisecond,
		nil,
	)
	store := snapshot.NewStore(fs, cfg.Output.Dir)
	cache := posters.NewCache(fs, cfg.Posters.Dir, cfg.Posters.MaxPosters, store, client.DownloadPoster)

	if *serve {
		listen := cfg.Server.Addr
		if *addr != "" {
			listen = *addr
		}
		runServer(listen, client, fs, cfg.Posters.Dir)
		return
	}

	kinds := []models.Kind{models.KindMovie, models.KindSeries}
	if *moviesOnly {
		kinds = []models.Kind{models.KindMovie}
	} else if *seriesOnly {
		kinds = []models.Kind{models.KindSeries}
	}

	pipeline := catalog.NewPipeline(client, store, cache, cfg.Catalog.TargetCount, cfg.Catalog.MaxPages, cfg.Catalog.Workers)
	if err := pipeline.Run(context.Background(), kinds); err != nil {
		log.Printf("[main] ingestion failed: %v", err)
		os.Exit(1)
	}
}

func runServer(addr string, client *catalog.Client, fs afero.Fs, posterDir string) {
	router := utils.NewRouter()

	details := handlers.NewDetailsHandler(client)
	router.HandleFunc("/api/details/{kind}/{id}", details.GetDetails).Methods(http.MethodGet)

	postersHandler := handlers.NewPostersHandler(fs, posterDir)
	router.HandleFunc("/api/posters/{file}", postersHandler.GetPoster).Methods(http.MethodGet)

	log.Printf("[server] listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("[server] %v", err)
	}
}
