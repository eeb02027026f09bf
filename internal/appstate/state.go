// Package appstate wires every component spec.md §2 names into a single
// running process: the durable store, the in-memory cache, the spatial
// index, the content pipeline, push delivery, moderation workers, the
// event bus, every internal/service service, and the HTTP+WebSocket API
// server. Construction proceeds config, then store, then services, then
// API, generalized since
// spec.md §6's `components` section makes several of these optional per
// process instance.
package appstate

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/config"
	"github.com/afrodite-backend/corectl/internal/content"
	"github.com/afrodite-backend/corectl/internal/eventbus"
	"github.com/afrodite-backend/corectl/internal/geoindex"
	"github.com/afrodite-backend/corectl/internal/metrics"
	"github.com/afrodite-backend/corectl/internal/moderation"
	"github.com/afrodite-backend/corectl/internal/moderation/llm"
	"github.com/afrodite-backend/corectl/internal/notify/slack"
	"github.com/afrodite-backend/corectl/internal/push"
	"github.com/afrodite-backend/corectl/internal/push/apns"
	"github.com/afrodite-backend/corectl/internal/push/fcm"
	"github.com/afrodite-backend/corectl/internal/push/webpush"
	"github.com/afrodite-backend/corectl/internal/pushstate"
	"github.com/afrodite-backend/corectl/internal/service"
	"github.com/afrodite-backend/corectl/internal/session"
	"github.com/afrodite-backend/corectl/internal/store"
	"github.com/afrodite-backend/corectl/internal/workpool"

	"github.com/afrodite-backend/corectl/internal/api"
)

// contentWorkerPoolSize bounds the CPU-bound transcode/face-detect work
// internal/content.Pipeline offloads per process.
const contentWorkerPoolSize = 4

// moderationIdlePause is how long a moderation worker sleeps after finding
// its queue empty before polling again.
const moderationIdlePause = 2 * time.Second

// moderationPromptTemplate is the single prompt every moderation queue
// renders its item's text/description into (spec.md §4.G "LLM path").
// Not configurable: spec.md names the provider URL/model/key as
// configuration, never the prompt itself.
const moderationPromptTemplate = "Review the following user-submitted content for a dating app and respond with ACCEPT or REJECT on the first line, followed by a one-sentence reason:\n\n%s"

// State is every constructed, wired component of a running corectld
// process.
type State struct {
	Config *config.Config
	Logger *slog.Logger

	Cache      *cache.Cache
	DBClient   *store.Client
	Repository *store.Repository
	GeoIndex   *geoindex.Index
	Metrics    *metrics.Registry

	contentPool     *workpool.Pool
	ContentPipeline *content.Pipeline

	PushManager *push.Manager
	EventBus    *eventbus.Bus

	ModerationWorkers []*moderation.Worker
	Escalator         *slack.Service

	AccountService    *service.AccountService
	ProfileService    *service.ProfileService
	MediaService      *service.MediaService
	ModerationService *service.ModerationService
	NewsService       *service.NewsService

	SessionStore session.Store
	Server       *api.Server
}

// New constructs and wires every component named by cfg, returning a State
// ready for Run. It performs the durable-store migration and warm cache
// load, but starts no background goroutines.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*State, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dbClient, err := store.Open(store.Config{
		DatabaseDir:          cfg.DatabaseDir,
		InRAM:                cfg.SQLiteInRAM,
		ReplicatorConfigured: cfg.MediaBackup.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("appstate: open store: %w", err)
	}

	repo := store.NewRepository(dbClient)

	c := cache.New()
	accounts, err := repo.ListAccountsForCacheLoad(ctx)
	if err != nil {
		return nil, fmt.Errorf("appstate: list accounts for cache load: %w", err)
	}
	seeds := make([]cache.AccountSeed, 0, len(accounts))
	for _, a := range accounts {
		visibility, err := repo.ProfileVisibility(ctx, a.InternalID)
		if err != nil {
			return nil, fmt.Errorf("appstate: load visibility for account %d: %w", a.InternalID, err)
		}
		seed := cache.AccountSeed{
			InternalID: a.InternalID,
			AccountID:  a.AccountID,
			Shared: cache.SharedState{
				AccountState: a.State,
				Visibility:   visibility,
			},
		}
		if a.HasToken {
			seed.AccessToken = a.Token
		}
		seeds = append(seeds, seed)
	}
	c.Load(seeds)

	index := geoindex.New(geoindex.Corners{
		LatTopLeft:     cfg.Location.LatTopLeft,
		LonTopLeft:     cfg.Location.LonTopLeft,
		LatBottomRight: cfg.Location.LatBottomRight,
		LonBottomRight: cfg.Location.LonBottomRight,
		CellSquareKm:   cfg.Location.IndexCellSquareKm,
	})

	reg := metrics.New()

	pushManager, err := buildPushManager(ctx, cfg, c, repo, logger)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(c, pushManager, logger)
	repo.SetNotifier(bus)

	if err := os.MkdirAll(mediaOutputDir(cfg), 0o755); err != nil {
		return nil, fmt.Errorf("appstate: create media output directory: %w", err)
	}

	pool := workpool.New(contentWorkerPoolSize)
	pipeline := content.New(repo, bus, pool, mediaOutputDir(cfg), content.DefaultFaceDetector{})

	escalator := slack.NewService(slack.ServiceConfig{
		Token:   cfg.ExternalServices.SlackToken,
		Channel: cfg.ExternalServices.SlackChannel,
	})

	workers := buildModerationWorkers(cfg, repo, escalator, logger)

	s := &State{
		Config:            cfg,
		Logger:            logger,
		Cache:             c,
		DBClient:          dbClient,
		Repository:        repo,
		GeoIndex:          index,
		Metrics:           reg,
		contentPool:       pool,
		ContentPipeline:   pipeline,
		PushManager:       pushManager,
		EventBus:          bus,
		ModerationWorkers: workers,
		Escalator:         escalator,
		SessionStore:      repo,
	}

	s.wireServices()

	s.Server = api.NewServer(cfg, c, dbClient, s.SessionStore, reg, logger)
	if cfg.Components.Account {
		s.Server.SetAccountService(s.AccountService)
	}
	if cfg.Components.Profile {
		s.Server.SetProfileService(s.ProfileService)
	}
	if cfg.Components.Media {
		s.Server.SetMediaService(s.MediaService)
	}
	s.Server.SetModerationService(s.ModerationService)
	s.Server.SetNewsService(s.NewsService)

	if err := s.Server.ValidateWiring(); err != nil {
		return nil, err
	}
	return s, nil
}

// wireServices constructs every internal/service service this process's
// components enable. Moderation and news are admin surfaces, always
// available regardless of the `components` section.
func (s *State) wireServices() {
	if s.Config.Components.Account {
		s.AccountService = service.NewAccountService(s.Repository, s.Cache)
	}
	if s.Config.Components.Profile {
		s.ProfileService = service.NewProfileService(s.Repository, s.GeoIndex, s.Cache)
	}
	if s.Config.Components.Media {
		s.MediaService = service.NewMediaService(s.Repository, s.ContentPipeline, mediaUploadTmpDir(s.Config))
	}
	s.ModerationService = service.NewModerationService(s.Repository)
	s.NewsService = service.NewNewsService(s.Repository, s.Cache, s.EventBus)
}

// buildPushManager wires one Sender per configured provider (spec.md §4.E
// "one sender per provider"). A provider with no credentials configured is
// simply omitted; NewManager accepts zero senders, in which case Wake is a
// no-op for every account.
func buildPushManager(ctx context.Context, cfg *config.Config, c *cache.Cache, repo *store.Repository, logger *slog.Logger) (*push.Manager, error) {
	adapter := pushstate.New(c, repo, logger)
	var senders []push.Sender

	ext := cfg.ExternalServices
	if ext.APNsCertFile != "" && ext.APNsKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(ext.APNsCertFile, ext.APNsKeyFile)
		if err != nil {
			return nil, fmt.Errorf("appstate: load APNs certificate: %w", err)
		}
		senders = append(senders, apns.New(apns.Config{
			Certificate: cert,
			Production:  ext.APNsProduction,
			Topic:       ext.APNsTopic,
		}))
	}
	if ext.FCMProjectID != "" && ext.FCMServiceAccountFile != "" {
		serviceAccount, err := os.ReadFile(ext.FCMServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("appstate: read FCM service account: %w", err)
		}
		fcmClient, err := fcm.New(ctx, fcm.Config{
			ProjectID:          ext.FCMProjectID,
			ServiceAccountJSON: serviceAccount,
		})
		if err != nil {
			return nil, fmt.Errorf("appstate: build FCM client: %w", err)
		}
		senders = append(senders, fcmClient)
	}
	if ext.WebPushVAPIDPublicKey != "" && ext.WebPushVAPIDPrivateKey != "" {
		senders = append(senders, webpush.New(webpush.Config{
			VAPIDPublicKey:  ext.WebPushVAPIDPublicKey,
			VAPIDPrivateKey: ext.WebPushVAPIDPrivateKey,
			Subscriber:      ext.WebPushSubscriber,
		}))
	}

	return push.NewManager(adapter, logger, senders...), nil
}

// buildModerationWorkers builds the three fixed queues spec.md §4.G names
// (media-initial, media-subsequent, profile strings), sharing one LLM
// client and escalator.
func buildModerationWorkers(cfg *config.Config, repo *store.Repository, escalator *slack.Service, logger *slog.Logger) []*moderation.Worker {
	mc := cfg.Moderation

	var llmClient moderation.LLMClient
	if cfg.ExternalServices.ModerationLLMURL != "" {
		llmClient = llm.New(llm.Config{
			Endpoint: cfg.ExternalServices.ModerationLLMURL,
			APIKey:   cfg.ExternalServices.ModerationLLMAPIKey,
			Model:    cfg.ExternalServices.ModerationLLMModel,
			Timeout:  mc.LLMTimeout,
			Schedule: mc.LLMRetrySchedule,
		})
	}

	verdictCfg := moderation.Config{
		LLM:                        llmClient,
		PromptTemplate:             moderationPromptTemplate,
		ExpectedAcceptToken:        mc.ExpectedAcceptToken,
		AppendLLMOutputToRejection: mc.AppendLLMOutputReason,
		EscalateRejections:         mc.EscalateRejections,
		DefaultAction:              moderation.VerdictEscalate,
	}

	queues := []moderation.QueueKind{
		moderation.QueueMediaContentInitial,
		moderation.QueueMediaContent,
		moderation.QueueProfileString,
	}
	workers := make([]*moderation.Worker, 0, len(queues))
	for _, q := range queues {
		w := moderation.NewWorker(repo, q, verdictCfg, mc.PageSize, mc.Concurrency, logger)
		w.SetEscalator(escalator)
		workers = append(workers, w)
	}
	return workers
}

// mediaOutputDir and mediaUploadTmpDir derive fixed subdirectories of
// DatabaseDir for the content pipeline's finished output and the media
// service's staged-upload scratch space: spec.md names no separate media
// path, and both already live beside current.db/history.db under the same
// operator-managed directory.
func mediaOutputDir(cfg *config.Config) string {
	return cfg.DatabaseDir + "/media"
}

func mediaUploadTmpDir(cfg *config.Config) string {
	return cfg.DatabaseDir + "/media-tmp"
}

func idleSleep(d time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
}

// Run starts every background loop (content pipeline, push delivery,
// moderation workers) and then blocks serving the API server until ctx is
// cancelled or the listener fails.
func (s *State) Run(ctx context.Context) error {
	go s.ContentPipeline.Run(ctx)
	go s.PushManager.Run(ctx)
	for _, w := range s.ModerationWorkers {
		w := w
		go func() {
			if err := w.Run(ctx, idleSleep(moderationIdlePause)); err != nil && ctx.Err() == nil {
				s.Logger.Error("moderation worker stopped", "error", err)
			}
		}()
	}

	return s.Server.Start(ctx, s.Config.Socket.ListenAddr)
}

// Close releases the durable store's connections. Call after Run returns.
func (s *State) Close() error {
	return s.DBClient.Close()
}
