package app

import (
	"clinic/config"
	"clinic/internal/database"
	"clinic/internal/events"
	"clinic/internal/handlers/middleware"
	"clinic/internal/logger"
	"clinic/internal/metrics"
	"clinic/internal/repositories"
	"clinic/internal/services"
	"clinic/internal/validation"
	"clinic/internal/websockets"

	recordsController "clinic/internal/controllers/records"
	. "clinic/internal/models"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Metrics    *metrics.Metrics
	Config     config.Config

	// Services
	TransactionService *services.TransactionService

	// Repositories
	UserRepo repositories.UserRepository

	// Controllers
	UserController          *recordsController.Controller[UserCreate, User]
	AppointmentController   *recordsController.Controller[AppointmentCreate, Appointment]
	MessageController       *recordsController.Controller[MessageCreate, Message]
	MedicalRecordController *recordsController.Controller[MedicalRecordCreate, MedicalRecord]
	PrescriptionController  *recordsController.Controller[PrescriptionCreate, Prescription]
	BillingController       *recordsController.Controller[BillingRecordCreate, BillingRecord]
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	return NewWithConfig(config)
}

// NewWithConfig builds the app from an explicit config and applies pending
// migrations.
func NewWithConfig(config config.Config) (*App, error) {
	log := logger.New("app").Function("NewWithConfig")

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	applied, err := db.MigrateUp()
	if err != nil {
		_ = db.Close()
		return &App{}, log.Err("failed to apply migrations", err)
	}
	log.Info("Migrations applied", "count", applied)

	eventBus := events.New(db.Cache.Events, config)
	appMetrics := metrics.New()

	// Initialize services
	transactionService := services.NewTransactionService(db)

	// Initialize repositories
	userRepo := repositories.New(db)

	// Initialize controllers with repositories and services
	deps := recordsController.Dependencies{
		UserRepo:           userRepo,
		TransactionService: transactionService,
		EventBus:           eventBus,
		Metrics:            appMetrics,
	}
	middleware := middleware.New(config, appMetrics)

	websocket, err := websockets.New(eventBus, config)
	if err != nil {
		_ = eventBus.Close()
		_ = db.Close()
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:           db,
		Config:             config,
		Middleware:         middleware,
		Metrics:            appMetrics,
		TransactionService: transactionService,
		UserRepo:           userRepo,
		Websocket:          websocket,
		EventBus:           eventBus,

		UserController: recordsController.New(
			"User", "users", validation.User,
			repositories.RecordRepository[User](userRepo), deps,
		),
		AppointmentController: recordsController.New(
			"Appointment", "appointments", validation.Appointment,
			repositories.NewRecord[Appointment](db, "Appointment"), deps,
		),
		MessageController: recordsController.New(
			"Message", "messages", validation.Message,
			repositories.NewRecord[Message](db, "Message"), deps,
		),
		MedicalRecordController: recordsController.New(
			"MedicalRecord", "medical_records", validation.MedicalRecord,
			repositories.NewRecord[MedicalRecord](db, "MedicalRecord"), deps,
		),
		PrescriptionController: recordsController.New(
			"Prescription", "prescriptions", validation.Prescription,
			repositories.NewRecord[Prescription](db, "Prescription"), deps,
		),
		BillingController: recordsController.New(
			"BillingRecord", "billing", validation.BillingRecord,
			repositories.NewRecord[BillingRecord](db, "BillingRecord"), deps,
		),
	}

	if err := app.validate(); err != nil {
		_ = app.Close()
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []struct {
		name  string
		isNil bool
	}{
		{"websocket manager", a.Websocket == nil},
		{"event bus", a.EventBus == nil},
		{"metrics", a.Metrics == nil},
		{"transaction service", a.TransactionService == nil},
		{"user repository", a.UserRepo == nil},
		{"user controller", a.UserController == nil},
		{"appointment controller", a.AppointmentController == nil},
		{"message controller", a.MessageController == nil},
		{"medical record controller", a.MedicalRecordController == nil},
		{"prescription controller", a.PrescriptionController == nil},
		{"billing controller", a.BillingController == nil},
	}

	for _, check := range nilChecks {
		if check.isNil {
			return log.ErrMsg(check.name + " is nil")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
