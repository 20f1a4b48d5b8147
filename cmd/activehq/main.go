package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/cache"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/database"
	"github.com/activehq/activehq/internal/pkg/env"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/pkg/notify"
	"github.com/activehq/activehq/internal/pkg/router"
	"github.com/activehq/activehq/internal/pkg/scheduler"
)

func main() {
	app, shutdown := NewApplication()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down...")
		shutdown()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
}

// NewApplication builds the fiber app and starts the background workers.
// The returned shutdown function stops the workers in reverse order.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	app := fiber.New(fiber.Config{
		AppName: "ActiveHQ",
	})

	app.Use(recover.New(), logger.New())

	router.InstallRouter(app)

	// Background delivery and maintenance.
	notifyQueue := notify.NewQueue(repos, 2)
	if n, err := notifyQueue.RequeuePending(500); err != nil {
		log.Printf("Requeue of pending notifications failed: %v", err)
	} else if n > 0 {
		log.Printf("Requeued %d pending notifications", n)
	}
	notifyQueue.Start()

	ledger := membership.NewService(database.GetDB(), clock.System())
	sched := scheduler.New(repos.Gym, ledger, notifyQueue, clock.System(), time.Hour)
	sched.Start()

	shutdown := func() {
		sched.Stop()
		notifyQueue.Stop()
	}
	return app, shutdown
}
