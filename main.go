package main

//go:generate swag init

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kbelhadj/gestock/cache"
	"github.com/kbelhadj/gestock/config"
	"github.com/kbelhadj/gestock/db"
	"github.com/kbelhadj/gestock/handlers"
	"github.com/kbelhadj/gestock/ledger"
	"github.com/kbelhadj/gestock/metrics"
	"github.com/kbelhadj/gestock/models"
	"github.com/kbelhadj/gestock/sequence"
	"github.com/kbelhadj/gestock/stock"
)

// @title           Gestock API
// @version         1.0.0
// @description     Shop management backend: inventory, client credits, sales and document numbering.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "gestock",
		Short:        "Shop management backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "gestock.toml", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Run database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, database, err := setup()
				if err != nil {
					return err
				}
				_ = cfg
				return database.Close()
			},
		},
		seqCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// seqCommand exposes the document sequencer for operators: preview is free,
// next consumes a number.
func seqCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seq",
		Short: "Inspect or advance document number sequences",
	}
	run := func(commit bool) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			kind := args[0]
			if kind != models.DocQuote && kind != models.DocInvoice {
				return fmt.Errorf("kind must be one of: quote, invoice")
			}
			cfg, database, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			seq := sequence.New(sequence.NewSQLCounterStore(database), cfg.Sequence.EpochFormat)
			var number string
			if commit {
				number, err = seq.Next(kind)
			} else {
				number, err = seq.Preview(kind)
			}
			if err != nil {
				return err
			}
			fmt.Println(number)
			return nil
		}
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "preview <kind>",
			Short: "Show the next number without consuming it",
			Args:  cobra.ExactArgs(1),
			RunE:  run(false),
		},
		&cobra.Command{
			Use:   "next <kind>",
			Short: "Consume and print the next number",
			Args:  cobra.ExactArgs(1),
			RunE:  run(true),
		},
	)
	return cmd
}

// setup loads configuration, configures logging and opens the migrated
// database.
func setup() (config.Config, *sql.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return cfg, nil, err
	}
	if err := db.Migrate(d); err != nil {
		d.Close()
		return cfg, nil, err
	}
	return cfg, d, nil
}

func serve() error {
	cfg, database, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	// Wire the subsystems
	registry := stock.NewSQLRegistry(database)
	led := ledger.New(ledger.NewSQLStore(database), registry, cfg.CacheTTL())
	lists, stats := led.Caches()
	lists.SetCounters(metrics.CacheHits.Inc, metrics.CacheMisses.Inc)
	stats.SetCounters(metrics.CacheHits.Inc, metrics.CacheMisses.Inc)

	salesCache := cache.New[[]models.Sale](cfg.CacheTTL())
	salesCache.SetCounters(metrics.CacheHits.Inc, metrics.CacheMisses.Inc)

	handlers.DB = database
	handlers.Ledger = led
	handlers.Stock = registry
	handlers.Seq = sequence.New(sequence.NewSQLCounterStore(database), cfg.Sequence.EpochFormat)
	handlers.SalesCache = salesCache

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.BasicAuth(cfg.Auth.User, cfg.Auth.Pass))

		// Items and stock
		r.Get("/items", handlers.ListItems)
		r.Post("/items", handlers.CreateItem)
		r.Get("/items/{id}", handlers.GetItem)
		r.Put("/items/{id}", handlers.UpdateItem)
		r.Delete("/items/{id}", handlers.DeleteItem)
		r.Post("/stock/check", handlers.CheckStock)

		// Credits
		r.Get("/credits", handlers.ListCredits)
		r.Post("/credits", handlers.CreateCredit)
		r.Get("/credits/stats", handlers.CreditStats)
		r.Get("/credits/{id}", handlers.GetCredit)
		r.Delete("/credits/{id}", handlers.DeleteCredit)
		r.Post("/credits/{id}/payments", handlers.AddPayment)
		r.Post("/credits/{id}/close", handlers.CloseCredit)

		// Sales
		r.Get("/sales", handlers.ListSales)
		r.Post("/sales", handlers.CreateSale)

		// Documents
		r.Get("/documents", handlers.ListDocuments)
		r.Post("/documents", handlers.CreateDocument)
		r.Get("/documents/next-number", handlers.NextDocumentNumber)

		// Dashboard
		r.Get("/dashboard", handlers.GetDashboard)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	addr := cfg.Addr()
	slog.Info("server starting", "address", addr)
	return http.ListenAndServe(addr, r)
}
