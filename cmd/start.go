package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"datadiff/core/loader"
	"datadiff/core/logger"
	"datadiff/core/middleware/auth"
	"datadiff/core/middleware/rayid"
	"datadiff/feature/compare"
	"datadiff/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the comparison API server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load configuration and logger
		env, err := loadEnvironment()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := env.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Connect to database (optional, needed for db: sources and the database sink)
		db, _ := env.connectDatabase(false)

		// 3. Build feature options (storage client, postgres DSN, cache)
		opts, err := env.serviceOptions(db)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             env.cfg.Server.BodyLimit(),
		})

		// 4. Register features
		mgr := loader.NewManager()
		compareFeature := compare.NewFeature(opts)
		mgr.Register(compareFeature)
		defer compareFeature.Service().Close()
		mgr.Register(integrity.NewFeature(opts.Storage, opts.Bucket, opts.Region, opts.ReportPrefix, db, opts.SinkTable, logg))

		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Health check stays public
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		app.Use(auth.New(auth.Config{ApiKey: env.cfg.Server.ApiKey, Skip: []string{"/health"}}))

		// 5. Load features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start server
		go func() {
			logg.Info("Starting server", zap.String("address", env.cfg.Server.Address()))
			if err := app.Listen(env.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
