package main

import (
	"hallbook/internal/reservations/handler"
	"hallbook/internal/reservations/repository"
	"hallbook/internal/reservations/service"
	"hallbook/internal/reservations/validator"
	"hallbook/pkg/app"
	"hallbook/pkg/audit"
	"hallbook/pkg/client"
	"hallbook/pkg/config"
	"hallbook/pkg/kafka"
	kafka_config "hallbook/pkg/kafka/config"
	kafka_middleware "hallbook/pkg/kafka/middleware"
	"hallbook/pkg/lock"
	"hallbook/pkg/settings"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	sink := initAuditSink(cfg)
	reservationService, availabilityService := initServices(cfg, sink)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, availabilityService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initAuditSink(cfg *config.Config) audit.Sink {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.AuditEnabled {
		cfg.Log.Info("Audit sink disabled, records will be discarded")
		return audit.NopSink{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.AuditTopic, kafkaCfg.AuditDLQTopic)
	if err != nil {
		// Auditing is best-effort; a missing broker must not keep the
		// service down.
		cfg.Log.Warn("Failed to create audit producer, records will be discarded", "error", err)
		return audit.NopSink{}
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Audit sink initialized",
		"topic", kafkaCfg.AuditTopic,
		"dlq_topic", kafkaCfg.AuditDLQTopic,
	)
	return audit.NewKafkaSink(producer, ServiceName, cfg.Log)
}

func initServices(cfg *config.Config, sink audit.Sink) (*service.ReservationService, *service.AvailabilityService) {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	settingsProvider := settings.NewMongoProvider(db, cfg.Log)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	sequence := service.NewSequenceGenerator(reservationRepo)
	submissionLock := lock.NewSubmissionLock(cfg.SubmissionLockWait)

	availabilityService := service.NewAvailabilityService(reservationRepo, settingsProvider, sink, cfg.Log)

	var calendarClient client.CalendarClient
	if cfg.CalendarBaseURL != "" {
		calendarClient = client.NewCalendarClient(cfg.CalendarBaseURL)
	} else {
		cfg.Log.Warn("No calendar base URL configured, payment confirmation will fail")
		calendarClient = client.NewCalendarClient("http://localhost:0")
	}

	var docStoreClient client.DocStoreClient
	if cfg.DocStoreBaseURL != "" {
		docStoreClient = client.NewDocStoreClient(cfg.DocStoreBaseURL)
	} else {
		cfg.Log.Warn("No document store base URL configured, document uploads will fail")
		docStoreClient = client.NewDocStoreClient("http://localhost:0")
	}

	reservationService := service.NewReservationService(
		cfg,
		reservationRepo,
		reservationValidator,
		availabilityService,
		settingsProvider,
		sequence,
		submissionLock,
		calendarClient,
		docStoreClient,
		sink,
		cfg.Log,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, availabilityService
}
