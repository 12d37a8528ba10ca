// Service analysis is the analyst augmentation agent backend: a
// backpressure-aware orchestrator that admits analysis requests, serves
// repeated work from content-addressed caches, dispatches admitted work to
// the sandbox or graph backends, and keeps a durable audit trail.
package analysis

import (
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"encore.dev/rlog"
	"encore.dev/storage/sqldb"

	"encore.app/analysis/artifactcache"
	"encore.app/analysis/backpressure"
	"encore.app/analysis/business/run"
	"encore.app/analysis/dispatch"
	"encore.app/analysis/repository/audit"
	"encore.app/analysis/workflow"
)

var analysisDB = sqldb.NewDatabase("analysis", sqldb.DatabaseConfig{
	Migrations: "./db/migrations",
})

var validate = validator.New()

var secrets struct {
	JWTSigningKey string // HS256 key for API bearer tokens
	SandboxAPIKey string // credential for the sandbox provider
	GraphPassword string // graph database password
}

//encore:service
type Service struct {
	business run.Business
	ctrl     *backpressure.Controller
	graph    *dispatch.GraphClient
	sandbox  *dispatch.SandboxClient
	db       *pgxpool.Pool

	temporal client.Client
	worker   worker.Worker
}

func initService() (*Service, error) {
	cfg := loadConfig()
	pgxdb := sqldb.Driver(analysisDB)

	rlog.Info("Initializing audit repository")
	repo := audit.New(pgxdb)

	graph, err := dispatch.NewGraphClient(cfg.GraphURI, cfg.GraphUser, secrets.GraphPassword)
	if err != nil {
		return nil, err
	}
	sandbox := dispatch.NewSandboxClient(cfg.SandboxURL, secrets.SandboxAPIKey, cfg.DispatchTimeout)

	load := backpressure.NewLoadState(cfg.ErrorWindow)
	ctrl := backpressure.NewController(backpressure.Config{
		Capacity:           cfg.Capacity,
		QueueBound:         cfg.QueueBound,
		ErrorRateThreshold: cfg.ErrorRateThreshold,
		ErrorWindow:        cfg.ErrorWindow,
		DegradedCooldown:   cfg.DegradedCooldown,
	}, load)

	lineage := run.NewLineageCollector()
	dispatcher := dispatch.New(sandbox, graph, lineage, dispatch.Config{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseBackoff: cfg.RetryBaseBackoff,
	})
	cache := artifactcache.New(artifactcache.ClusterBacking{}, cfg.CacheEntryBudget)

	svc := &Service{ctrl: ctrl, graph: graph, sandbox: sandbox, db: pgxdb}

	var recorder run.Recorder = &run.DirectRecorder{Audit: repo}
	if cfg.TemporalHostPort != "" {
		c, err := client.Dial(client.Options{HostPort: cfg.TemporalHostPort})
		if err != nil {
			return nil, err
		}
		workflow.SetActivityDependencies(repo)
		w := worker.New(c, workflow.TaskQueue, worker.Options{})
		w.RegisterWorkflow(workflow.AuditTrail)
		w.RegisterActivity(workflow.WriteAuditRecordActivity)
		w.RegisterActivity(workflow.WriteLineageEventsActivity)
		if err := w.Start(); err != nil {
			return nil, err
		}
		svc.temporal = c
		svc.worker = w
		recorder = &run.TemporalRecorder{Client: c}
		rlog.Info("Audit trail recorder using Temporal", "host", cfg.TemporalHostPort)
	} else {
		rlog.Info("Audit trail recorder writing directly to the relational store")
	}

	svc.business = run.NewBusiness(ctrl, cache, dispatcher, recorder, lineage, run.Options{
		QueueWaitTimeout: cfg.QueueWaitTimeout,
		DispatchTimeout:  cfg.DispatchTimeout,
		StatusTTL:        cfg.StatusTTL,
	})

	rlog.Info("Analysis orchestrator initialized",
		"capacity", cfg.Capacity, "queue_bound", cfg.QueueBound, "error_window", cfg.ErrorWindow)
	return svc, nil
}
