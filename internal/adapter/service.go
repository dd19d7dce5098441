package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-lsh/internal/audit"
	"github.com/nerrad567/gray-logic-lsh/internal/contextstore"
	"github.com/nerrad567/gray-logic-lsh/internal/discovery"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-lsh/internal/lshcore"
	"github.com/nerrad567/gray-logic-lsh/internal/schema"
	"github.com/nerrad567/gray-logic-lsh/internal/sysd"
)

// jobQueueDepth is the buffer size of the channel that feeds jobs to the
// core goroutine.
const jobQueueDepth = 64

// Service owns the single goroutine that may touch lshcore.Orchestrator
// and fans its ServiceResults out to MQTT, InfluxDB, the audit trail,
// and (optionally) a websocket hub.
type Service struct {
	cfg    *config.Config
	logger *logging.Logger

	mqttClient *mqtt.Client
	topics     mqtt.Topics

	orch     *lshcore.Orchestrator
	influx   *influxdb.Client
	disc     *discovery.Publisher
	ctxStore *contextstore.Store
	auditLog audit.Repository
	notifier *sysd.Notifier

	jobs     chan func()
	onResult func(lshcore.ServiceResult)
}

// Deps bundles every external collaborator Service needs. Fields left
// nil are treated as disabled features (e.g. influx/discovery/audit are
// all optional per config.yaml).
type Deps struct {
	Config     *config.Config
	Logger     *logging.Logger
	MQTTClient *mqtt.Client
	Topics     mqtt.Topics
	Schema     *schema.Set
	Influx     *influxdb.Client
	Discovery  *discovery.Publisher
	CtxStore   *contextstore.Store
	Audit      audit.Repository
	Notifier   *sysd.Notifier
}

// New builds a Service and its Orchestrator from Deps.
func New(d Deps) *Service {
	orch := lshcore.NewOrchestrator(lshcore.OrchestratorConfig{
		Clock:                      lshcore.RealClock{},
		ContextReader:              d.CtxStore,
		Validators:                 d.Schema.Validators(),
		HomieBase:                  d.Config.LSH.HomieBase,
		LSHBase:                    d.Config.LSH.LSHBase,
		ServiceTopic:               d.Topics.Service(),
		OtherActorsPrefix:          d.Config.LSH.OtherActorsPrefix,
		ClickTimeoutMillis:         d.Config.ClickTimeout().Milliseconds(),
		InterrogateThresholdMillis: d.Config.InterrogateThreshold().Milliseconds(),
		PingTimeoutMillis:          d.Config.PingTimeout().Milliseconds(),
	})

	return &Service{
		cfg:        d.Config,
		logger:     d.Logger,
		mqttClient: d.MQTTClient,
		topics:     d.Topics,
		orch:       orch,
		influx:     d.Influx,
		disc:       d.Discovery,
		ctxStore:   d.CtxStore,
		auditLog:   d.Audit,
		notifier:   d.Notifier,
		jobs:       make(chan func(), jobQueueDepth),
	}
}

// SetOnResult registers a callback invoked with every ServiceResult
// produced by the core, after MQTT/Influx/audit dispatch. Used by
// internal/api to rebroadcast state changes over its websocket hub.
func (s *Service) SetOnResult(fn func(lshcore.ServiceResult)) {
	s.onResult = fn
}

// Snapshot returns the current device registry, round-tripped through
// the core's single goroutine so callers outside it never read
// lshcore state directly.
func (s *Service) Snapshot(ctx context.Context) (map[string]lshcore.DeviceState, error) {
	type result struct {
		snapshot map[string]lshcore.DeviceState
	}
	out := make(chan result, 1)
	if err := s.enqueue(ctx, func() {
		out <- result{snapshot: s.orch.GetDeviceRegistry()}
	}); err != nil {
		return nil, err
	}
	select {
	case r := <-out:
		return r.snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ConfiguredDeviceNames returns the sorted list of devices named in the
// loaded SystemConfig.
func (s *Service) ConfiguredDeviceNames(ctx context.Context) ([]string, error) {
	out := make(chan []string, 1)
	if err := s.enqueue(ctx, func() {
		out <- s.orch.GetConfiguredDeviceNames()
	}); err != nil {
		return nil, err
	}
	select {
	case names := <-out:
		return names, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReloadSystemConfig reads the configured SystemConfigPath and loads it
// into the orchestrator. Safe to call concurrently with message
// processing; the load itself is serialised onto the core goroutine.
func (s *Service) ReloadSystemConfig(ctx context.Context) error {
	cfg, err := loadSystemConfig(s.cfg.LSH.SystemConfigPath)
	if err != nil {
		return err
	}

	out := make(chan lshcore.ServiceResult, 1)
	if err := s.enqueue(ctx, func() {
		msg := s.orch.UpdateSystemConfig(*cfg)
		s.logger.Info("system config reloaded", "summary", msg)
		out <- s.orch.GetStartupCommands()
	}); err != nil {
		return err
	}

	select {
	case result := <-out:
		s.dispatch(result)
		if s.auditLog != nil {
			entry := &audit.AuditLog{
				Action:     "config_reload",
				EntityType: "system_config",
				Source:     "adapter",
				Details:    map[string]any{"path": s.cfg.LSH.SystemConfigPath},
			}
			if err := s.auditLog.Create(ctx, entry); err != nil {
				s.logger.Warn("writing config-reload audit entry failed", "error", err)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func loadSystemConfig(path string) (*lshcore.SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading system config %s: %w", path, err)
	}
	var cfg lshcore.SystemConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing system config %s: %w", path, err)
	}
	return &cfg, nil
}

// enqueue submits a job to the core goroutine, returning an error if
// the queue is full for longer than ctx allows.
func (s *Service) enqueue(ctx context.Context, job func()) error {
	select {
	case s.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts MQTT subscriptions, loads the initial SystemConfig, and
// supervises the core loop, watchdog ticker, and click-GC ticker until
// ctx is cancelled. It returns the first error from any supervised
// task.
//
// The core loop goroutine is started before anything that enqueues a
// job onto it (ReloadSystemConfig, runInitialVerification): those calls
// block waiting for their job to execute, so the loop must already be
// draining s.jobs or startup would deadlock.
func (s *Service) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return s.runCoreLoop(gctx) })

	if err := s.subscribe(); err != nil {
		return fmt.Errorf("subscribing to MQTT topics: %w", err)
	}

	if err := s.ReloadSystemConfig(ctx); err != nil {
		s.logger.Error("initial system config load failed", "error", err)
	} else {
		s.runInitialVerification(ctx)
		if s.disc != nil {
			if snapshot, err := s.Snapshot(ctx); err == nil {
				if err := s.disc.PublishAll(snapshot); err != nil {
					s.logger.Warn("publishing discovery configs failed", "error", err)
				}
			}
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Ready(); err != nil {
			s.logger.Warn("sd_notify READY failed", "error", err)
		}
	}

	group.Go(func() error { return s.runWatchdogTicker(gctx) })
	group.Go(func() error { return s.runClickCleanupTicker(gctx) })
	if s.notifier != nil {
		if interval, enabled := s.notifier.WatchdogEnabled(); enabled {
			group.Go(func() error { return s.runSystemdPing(gctx, interval) })
		}
	}

	return group.Wait()
}

// runInitialVerification implements the two-phase startup check from
// spec §4.8: ping every configured device that isn't yet connected,
// then — after the configured grace period — declare any device still
// unhealthy unresponsive to the verification ping. The final check
// runs on its own goroutine so it doesn't hold up Run's startup path.
func (s *Service) runInitialVerification(ctx context.Context) {
	names, err := s.ConfiguredDeviceNames(ctx)
	if err != nil {
		s.logger.Warn("reading configured device names for initial verification failed", "error", err)
		return
	}

	out := make(chan lshcore.ServiceResult, 1)
	if err := s.enqueue(ctx, func() { out <- s.orch.VerifyInitialDeviceStates() }); err != nil {
		s.logger.Warn("scheduling initial verification ping failed", "error", err)
		return
	}
	select {
	case result := <-out:
		s.dispatch(result)
	case <-ctx.Done():
		return
	}

	timeout := s.cfg.InitialStateTimeout()
	go func() {
		select {
		case <-time.After(timeout):
		case <-ctx.Done():
			return
		}
		finalOut := make(chan lshcore.ServiceResult, 1)
		if err := s.enqueue(ctx, func() { finalOut <- s.orch.RunFinalVerification(names) }); err != nil {
			return
		}
		select {
		case result := <-finalOut:
			s.dispatch(result)
		case <-ctx.Done():
		}
	}()
}

// runCoreLoop is the only goroutine that ever touches s.orch.
func (s *Service) runCoreLoop(ctx context.Context) error {
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Service) runWatchdogTicker(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.WatchdogInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.enqueue(ctx, func() {
				s.dispatch(s.orch.RunWatchdogCheck())
			}); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Service) runClickCleanupTicker(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.ClickCleanupInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.enqueue(ctx, func() {
				if msg := s.orch.CleanupPendingClicks(); msg != nil {
					s.logger.Debug("expired pending clicks", "summary", *msg)
				}
			}); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// runSystemdPing pings the systemd watchdog at half its configured
// interval, independent of whether any lshcore tick ran in that window
// — this process being alive and responsive is what matters here, not
// device liveness.
func (s *Service) runSystemdPing(ctx context.Context, watchdogInterval time.Duration) error {
	ticker := time.NewTicker(watchdogInterval / 2) //nolint:mnd // systemd.service(5) recommended halving factor
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.notifier.Ping(); err != nil {
				s.logger.Warn("sd_notify WATCHDOG=1 failed", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
