// Command metv-hotplugd tracks DVB tuner frontends as adapters come and go
// and serves the result over a small HTTP status API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"metv/internal/config"
	"metv/internal/dvb"
	"metv/internal/frontend"
	"metv/internal/handler"
	"metv/internal/hub"
	"metv/internal/inventory"
	"metv/internal/repository"
	"metv/internal/repository/sqlite"
	"metv/internal/service"
	"metv/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	basePath := flag.String("base", "", "DVB device directory (overrides config)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting metv hotplug daemon...")

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path == "" {
		log.Println("No config file found, using defaults")
	} else {
		log.Printf("Config loaded: %s", path)
	}

	cfg.Override(*basePath, *addr)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	log.Printf("Config:\n%s", cfg.Summary())

	if err := run(cfg); err != nil {
		log.Printf("Exiting with error: %v", err)
		os.Exit(1)
	}
	log.Println("Stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func run(cfg *config.Config) error {
	var journal repository.Journal
	if cfg.Journal.Enabled {
		repo, err := sqlite.New(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer repo.Close()
		log.Printf("Journal opened: %s", cfg.Journal.Path)

		if retention := cfg.Journal.Retention.Duration(); retention > 0 {
			n, err := repo.Prune(context.Background(), time.Now().Add(-retention))
			if err != nil {
				log.Printf("Failed to prune journal: %v", err)
			} else if n > 0 {
				log.Printf("Pruned %d journal entries older than %s", n, retention)
			}
		}
		journal = repo
	}

	eventBus := service.NewEventBus()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	sseHub := hub.New()
	go sseHub.Run(hubCtx)

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		sseHub.Forward(eventChan)
	}()

	inv := inventory.New(dvb.Resolver{Base: cfg.DVB.BasePath})
	svc := service.NewDiscoveryService(inv, journal, eventBus)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The watcher must know the present adapters before the startup scan,
	// otherwise an adapter added in between is reported by neither.
	w := watcher.New(cfg.DVB.BasePath).WithBuffer(cfg.Queues.Hotplug)
	watchDone := make(chan error, 1)
	go func() { watchDone <- w.Watch(ctx) }()
	<-w.Ready()

	sink := frontend.NewChanSink(cfg.Queues.Discovery)
	consumerDone := make(chan error, 1)
	go func() {
		defer sink.Close()
		consumerDone <- svc.Run(context.Background(), sink.Events())
	}()

	enum := dvb.NewEnumerator(cfg.DVB.BasePath).WithDebug(cfg.Logging.Debug)
	settle := frontend.Settle{
		Interval: cfg.DVB.Settle.Interval.Duration(),
		Timeout:  cfg.DVB.Settle.Timeout.Duration(),
	}
	mgr := frontend.New(enum, w.Events(), sink).
		WithSettle(settle).
		WithDebug(cfg.Logging.Debug)

	managerDone := make(chan error, 1)
	go func() {
		err := mgr.Run()
		sink.Finish()
		managerDone <- err
	}()

	var server *http.Server
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		h := handler.NewDiscoveryHandler(svc, mgr, eventBus)
		server = &http.Server{
			Addr:        cfg.Server.Addr,
			Handler:     handler.NewRouter(h, sseHub),
			ReadTimeout: 10 * time.Second,
			// no WriteTimeout: /events streams indefinitely
			IdleTimeout: 60 * time.Second,
		}
		go func() {
			log.Printf("Server listening on %s", cfg.Server.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	var runErr error
	managerFinished := false
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case runErr = <-managerDone:
		managerFinished = true
		if runErr == nil {
			log.Println("Frontend manager stopped, shutting down...")
		}
	case runErr = <-serverErr:
		log.Printf("Server error: %v", runErr)
	}

	// Closing the hotplug channel is what stops the manager
	stop()
	if !managerFinished {
		if err := <-managerDone; err != nil && runErr == nil {
			runErr = err
		}
	}
	if err := <-consumerDone; err != nil {
		log.Printf("Discovery consumer stopped: %v", err)
	}
	eventBus.Publish(service.NewEvent(service.EventManagerTerminated, mgr.Stats()))

	if err := <-watchDone; err != nil && !errors.Is(err, context.Canceled) && runErr == nil {
		runErr = err
	}

	// Let everything published so far reach the hub before it stops.
	// SSE streams end when the hub stops; Shutdown waits for them.
	eventBus.Unsubscribe(eventChan)
	close(eventChan)
	<-forwardDone
	hubCancel()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}

	return runErr
}
