package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/middleware"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/repository"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/service"
	"github.com/sdhealth/pathway-tracker/common/bootstrap"
	"github.com/sdhealth/pathway-tracker/common/clients"
	rediscommon "github.com/sdhealth/pathway-tracker/common/redis"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client
	Sessions   middleware.SessionStore
	Trust      clients.TrustAdapter

	// Repositories
	OnPathwayRepo       *repository.OnPathwayRepository
	PathwayRepo         *repository.PathwayRepository
	PatientRepo         *repository.PatientRepository
	DecisionPointRepo   *repository.DecisionPointRepository
	ClinicalRequestRepo *repository.ClinicalRequestRepository
	RequestTypeRepo     *repository.ClinicalRequestTypeRepository
	MdtRepo             *repository.MdtRepository
	AuditRepo           *repository.AuditRepository

	// Services
	StateEngine     *service.PathwayStateEngine
	Reconciler      *service.ClinicalRequestReconciler
	Events          service.EventPublisher
	DecisionService *service.DecisionService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	redisRaw := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := rediscommon.NewClient(redisRaw, components.Logger)

	sessions := middleware.NewRedisSessionStore(redisClient)

	trust := clients.NewTrustAdapterClient(&clients.ClientConfig{
		TrustAdapterURL: cfg.TrustAdapter.BaseURL,
		Timeout:         cfg.TrustAdapter.Timeout,
	}, components.Logger)

	// Repositories
	onPathwayRepo := repository.NewOnPathwayRepository(components.DB)
	pathwayRepo := repository.NewPathwayRepository(components.DB)
	patientRepo := repository.NewPatientRepository(components.DB)
	decisionPointRepo := repository.NewDecisionPointRepository(components.DB)
	clinicalRequestRepo := repository.NewClinicalRequestRepository(components.DB)
	requestTypeRepo := repository.NewClinicalRequestTypeRepository(components.DB)
	mdtRepo := repository.NewMdtRepository(components.DB)
	auditRepo := repository.NewAuditRepository(components.DB)

	// Services (bottom-up: dependencies first)
	stateEngine := service.NewPathwayStateEngine(
		onPathwayRepo,
		pathwayRepo,
		cfg.Lock.TTL,
		components.Logger,
	)

	reconciler := service.NewClinicalRequestReconciler(
		requestTypeRepo,
		clinicalRequestRepo,
		trust,
		components.Cache,
		cfg.Cache.DefaultTTL,
		components.Logger,
	)

	events := service.NewRedisEventPublisher(redisClient, components.Logger)

	decisionService := service.NewDecisionService(service.DecisionServiceOpts{
		Tx:               components.DB,
		OnPathways:       onPathwayRepo,
		Pathways:         pathwayRepo,
		Patients:         patientRepo,
		DecisionPoints:   decisionPointRepo,
		ClinicalRequests: clinicalRequestRepo,
		RequestTypes:     requestTypeRepo,
		Mdts:             mdtRepo,
		Audits:           auditRepo,
		State:            stateEngine,
		Reconciler:       reconciler,
		Trust:            trust,
		Events:           events,
		Logger:           components.Logger,
	})

	return &Container{
		Components:          components,
		Redis:               redisClient,
		Sessions:            sessions,
		Trust:               trust,
		OnPathwayRepo:       onPathwayRepo,
		PathwayRepo:         pathwayRepo,
		PatientRepo:         patientRepo,
		DecisionPointRepo:   decisionPointRepo,
		ClinicalRequestRepo: clinicalRequestRepo,
		RequestTypeRepo:     requestTypeRepo,
		MdtRepo:             mdtRepo,
		AuditRepo:           auditRepo,
		StateEngine:         stateEngine,
		Reconciler:          reconciler,
		Events:              events,
		DecisionService:     decisionService,
	}, nil
}
