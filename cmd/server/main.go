// cmd/server/main.go
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/rishikeshydv/bulk-email-sender/internal/config"
	"github.com/rishikeshydv/bulk-email-sender/internal/controller"
	"github.com/rishikeshydv/bulk-email-sender/internal/db"
	"github.com/rishikeshydv/bulk-email-sender/internal/logger"
	"github.com/rishikeshydv/bulk-email-sender/internal/mailer"
	"github.com/rishikeshydv/bulk-email-sender/internal/queue"
	"github.com/rishikeshydv/bulk-email-sender/internal/repository"
	"github.com/rishikeshydv/bulk-email-sender/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer conn.Close()
	log.Info().Msg("connected to database")

	var events queue.Publisher = queue.NoopPublisher{}
	if cfg.AMQPURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("amqp connection failed")
		}
		defer pub.Close()
		events = pub
		log.Info().Msg("connected to amqp")
	}

	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("mailer configuration invalid")
	}

	recipientRepo := &repository.RecipientRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}

	sendService := &service.SendService{
		RecipientRepo: recipientRepo,
		CampaignRepo:  campaignRepo,
		DeliveryRepo:  deliveryRepo,
		Mailer:        smtpMailer,
		Events:        events,
		Logger:        log,
		SenderName:    cfg.SMTP.FromName,
		SenderEmail:   cfg.SMTP.From,
	}

	sendController := &controller.SendController{SendService: sendService, Logger: log}
	recipientController := &controller.RecipientController{RecipientRepo: recipientRepo, Logger: log}
	campaignController := &controller.CampaignController{
		CampaignRepo: campaignRepo,
		DeliveryRepo: deliveryRepo,
		Logger:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Send pipeline. HandleFunc so the controller owns the 405 + Allow header.
	r.HandleFunc("/send", sendController.Send)

	// Recipient CRUD collaborator surface
	r.Post("/recipients", recipientController.BulkAdd)
	r.Get("/recipients", recipientController.List)
	r.Patch("/recipients/{id}", recipientController.SetActive)
	r.Delete("/recipients/{id}", recipientController.Delete)

	// Campaign history
	r.Get("/campaigns", campaignController.List)
	r.Get("/campaigns/{id}", campaignController.Get)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("🚀 server running")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
