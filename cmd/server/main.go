package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Cron-Secret",
		MaxAge:       3600,
	}))

	scheduleRepo := repository.NewScheduleRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	workflowRunRepo := repository.NewWorkflowRunRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	pipelineLogRepo := repository.NewPipelineLogRepository(db)

	clock := service.NewSystemClock()
	pipelineLogger := service.NewPipelineLogger(pipelineLogRepo)
	r2Service := service.NewR2Service(*cfg)
	generator := service.NewContentGenerator(*cfg)
	imageService := service.NewImageService(*cfg, r2Service)
	publishers := service.NewPublisherRegistry()

	workflowService := service.NewWorkflowService(*cfg, scheduleRepo, postRepo, socialAccountRepo, workflowRunRepo, profileRepo, generator, imageService, publishers, pipelineLogger, clock)
	dispatcherService := service.NewDispatcherService(*cfg, postRepo, socialAccountRepo, publishers, pipelineLogger, clock)
	postService := service.NewPostService(*cfg, scheduleRepo, postRepo, socialAccountRepo, profileRepo, generator, clock)

	cronAuth := middleware.NewCronAuthMiddleware(*cfg)

	workflow := handlers.NewWorkflowHandler(workflowService, dispatcherService)
	app.Post("/workflow/run", cronAuth.AuthMiddleware(), workflow.RunWorkflow)
	app.Get("/cron/publish", cronAuth.AuthMiddleware(), workflow.RunPublish)
	app.Post("/cron/publish", cronAuth.AuthMiddleware(), workflow.RunPublish)

	api := app.Group("/api")
	api.Use(cronAuth.AuthMiddleware())

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/generate", post.GeneratePost)
	api.Get("/posts", post.ListPosts)

	schedule := handlers.NewScheduleHandler(postService)
	api.Get("/schedule/next", schedule.NextRun)

	// cron jobs
	workflowJob := job.NewWorkflowJob(workflowService)
	publishJob := job.NewPublishJob(dispatcherService)
	sweepJob := job.NewStuckPostSweep(dispatcherService)

	//queue
	queueW := queue.NewQueue(dispatcherService)

	c := cron.New()
	c.AddFunc("@every 00h05m00s", workflowJob.Run)
	c.AddFunc("@every 00h01m00s", publishJob.Run)
	c.AddFunc("@every 00h10m00s", sweepJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
