package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"

	"plugyard/config"
	"plugyard/db"
	"plugyard/platform/shutdown"
	"plugyard/plugins"
	"plugyard/storage"
	"plugyard/web"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := config.Initialize(); err != nil {
		log.Fatal(err)
	}
	cfg := config.Get()

	// Execution history is optional; the server runs without it
	if err := db.Init(cfg.DB.Path); err != nil {
		logger.LogErr(err, "database unavailable, execution history disabled")
	}

	store, err := storage.New(storage.Config{
		Backend:   cfg.Storage.Backend,
		Dir:       cfg.Storage.Dir,
		BaseURL:   cfg.Server.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		log.Fatal(err)
	}

	reg, err := plugins.Default(nil, store)
	if err != nil {
		log.Fatal(err)
	}
	reg.OnLoadAll()

	// Create a new rweb server with options
	s := rweb.NewServer(rweb.ServerOptions{
		Address: cfg.Server.Address,
		Verbose: true,
	})

	// Add middleware for request logging
	s.Use(rweb.RequestInfo)

	// Local storage doubles as the /files backend; other backends serve
	// their own URLs
	localStore, _ := store.(*storage.Local)
	web.SetupRoutes(s, reg, localStore)

	shutdown.RegisterHook(func(time.Duration) error {
		reg.OnUnloadAll()
		return db.Close()
	})
	done := make(chan struct{})
	shutdown.InitShutdownService(done)

	go func() {
		if err := s.Run(); err != nil {
			logger.LogErr(err, "server stopped")
		}
	}()

	log.Printf("Starting Plugyard server on %s", cfg.Server.Address)
	<-done
}
