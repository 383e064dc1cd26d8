package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hatesaway-server/config"
	"hatesaway-server/core"
	"hatesaway-server/gallery"
	"hatesaway-server/handlers/api/comments"
	"hatesaway-server/handlers/api/drawings"
	"hatesaway-server/handlers/api/me"
	"hatesaway-server/handlers/api/sketch"
	"hatesaway-server/handlers/websocket"
	"hatesaway-server/middleware"
	"hatesaway-server/stores"
	"hatesaway-server/stores/instrumented"
	"hatesaway-server/stores/notify"
	"hatesaway-server/sweeper"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(svc *gallery.Service, sessions *sketch.Sessions, likeLimiter *middleware.Limiter, cfg config.Config, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)

	corsOptions := cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			if origin == "" {
				return false
			}

			parsed, err := url.Parse(origin)
			if err != nil {
				return false
			}

			switch parsed.Scheme {
			case "http", "https":
				switch parsed.Hostname() {
				case "localhost", "127.0.0.1", "[::1]":
					return true
				}
			}

			return false
		},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", middleware.UserIDHeader},
		ExposedHeaders:   []string{middleware.UserIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}

	r.Use(cors.Handler(corsOptions))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, map[string]any{
				"status":          "ok",
				"storage":         cfg.Storage.Type,
				"changeListeners": websocket.ConnectedClients(),
				"canvasSessions":  sessions.Len(),
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity)

			r.Get("/me", me.HandleMe())

			r.Route("/drawings", func(r chi.Router) {
				r.Get("/", drawings.HandleList(svc))
				r.Post("/", drawings.HandleCreate(svc))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", drawings.HandleGet(svc))
					r.Delete("/", drawings.HandleDelete(svc))
					r.With(likeLimiter.Handler).Post("/like", drawings.HandleLike(svc))
					r.Get("/comments", comments.HandleList(svc))
					r.Post("/comments", comments.HandleCreate(svc))
				})
			})

			r.Route("/canvas", func(r chi.Router) {
				r.Post("/", sketch.HandleStart(sessions, sketch.Defaults{
					Width:      cfg.Canvas.Width,
					Height:     cfg.Canvas.Height,
					Background: cfg.Canvas.Background,
				}))
				r.Get("/options", sketch.HandleOptions())
				r.Post("/strokes", sketch.HandleStroke(sessions))
				r.Get("/export", sketch.HandleExport(sessions))
				r.Post("/throw", sketch.HandleThrow(sessions, svc))
				r.Post("/{command}", sketch.HandleCommand(sessions))
			})
		})
	})

	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	return r
}

func waitForShutdown(srv *http.Server, ioo *socketio.Server, cleanup ...func()) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	ioo.Close(nil)
	for _, fn := range cleanup {
		fn()
	}
}

func closeStore(store core.KVStore) func() {
	return func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close storage")
			}
		}
	}
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	logLevel := flag.String("loglevel", "", "Set the logging level: debug, info, warn, error, fatal, panic")
	listenAddr := flag.String("listen", "", "Set the server listen address")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)

	store, err := stores.GetStore(cfg)
	if err != nil {
		logrus.WithField("event", "open storage").Fatal(err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := instrumented.NewMetrics(registry)
	if err != nil {
		logrus.WithField("event", "register metrics").Fatal(err)
	}
	hub := notify.NewHub()
	svc := gallery.NewService(notify.Wrap(instrumented.Wrap(store, metrics), hub))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	cancelSweep, err := sweeper.Start(sweepCtx, svc, cfg.Sweep.Cron)
	if err != nil {
		logrus.WithField("event", "start sweeper").Fatal(err)
	}

	sessions := sketch.NewSessions()
	sessions.StartJanitor(sweepCtx, time.Minute, cfg.Canvas.IdleTimeout)
	likeLimiter := middleware.NewLimiter(middleware.LimiterConfig{
		RPS:     cfg.Likes.RPS,
		Burst:   cfg.Likes.Burst,
		IPRPS:   cfg.Likes.IPRPS,
		IPBurst: cfg.Likes.IPBurst,
	})
	likeLimiter.StartJanitor(sweepCtx, time.Minute, middleware.DefaultLimiterIdle)

	r := setupRouter(svc, sessions, likeLimiter, cfg, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	ioo, stopRelay := websocket.SetupSocketIO(hub)
	r.Handle("/socket.io/", ioo.ServeHandler(nil))

	srv := &http.Server{Addr: cfg.Server.Listen, Handler: r}
	logrus.WithField("addr", cfg.Server.Listen).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, ioo, stopRelay, cancelSweep, stopSweep, closeStore(store))
}
