package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/job-agent/internal/attempter"
	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/ledger"
	"github.com/jonathan/job-agent/internal/llm"
	"github.com/jonathan/job-agent/internal/matcher"
	"github.com/jonathan/job-agent/internal/notify"
	"github.com/jonathan/job-agent/internal/orchestrator"
	"github.com/jonathan/job-agent/internal/profile"
	"github.com/jonathan/job-agent/internal/scraper"
	"github.com/jonathan/job-agent/internal/store"
)

// app bundles the wired pipeline for one CLI invocation.
type app struct {
	cfg          *config.Config
	kv           store.KV
	ledger       *ledger.Ledger
	profiles     *profile.Store
	orchestrator *orchestrator.Orchestrator
	intake       *profile.Intake
	llmClient    llm.Client
	notifier     notify.Notifier
}

// close releases held resources.
func (a *app) close() {
	if a.llmClient != nil {
		if err := a.llmClient.Close(); err != nil {
			log.Printf("closing model client: %v", err)
		}
	}
	if err := a.kv.Close(); err != nil {
		log.Printf("closing store: %v", err)
	}
}

// buildApp loads configuration and wires every pipeline component. The
// sources file is only required by commands that scrape.
func buildApp(ctx context.Context, needSources bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	kv, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var client llm.Client
	if cfg.GeminiAPIKey != "" {
		client, err = llm.NewGeminiClient(ctx, llm.DefaultGeminiConfig(), cfg.GeminiAPIKey)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("failed to initialize model client: %w", err)
		}
	} else {
		log.Printf("GEMINI_API_KEY not set; semantic scoring disabled, using skill-overlap heuristic")
	}

	var scorer matcher.SemanticScorer
	if client != nil {
		scorer = matcher.NewLLMScorer(client, matcher.DefaultDescriptionBudget)
	}
	m, err := matcher.New(matcher.Config{
		MatchThreshold:    cfg.Matcher.Threshold,
		ReviewThreshold:   cfg.Matcher.ReviewThreshold,
		DescriptionBudget: matcher.DefaultDescriptionBudget,
	}, scorer)
	if err != nil {
		kv.Close()
		return nil, err
	}

	var sources []scraper.SourceConfig
	if needSources {
		sources, err = config.LoadSources(cfg.SourcesFile)
		if err != nil {
			kv.Close()
			return nil, err
		}
	}

	var drafter attempter.Drafter
	if client != nil {
		drafter = attempter.NewLLMDrafter(client)
	}
	var submitter attempter.Submitter = &attempter.Simulated{}
	if cfg.Attempter.UseBrowser {
		submitter = attempter.NewBrowser(cfg.Attempter.BrowserTimeout, cfg.Verbose, drafter)
	}

	l := ledger.New(kv)
	a := attempter.New(l, submitter, attempter.Config{
		MaxAttempts: cfg.Attempter.MaxAttempts,
		RetryDelay:  cfg.Attempter.RetryDelay,
	})
	notifier := notify.NewConsole(os.Stdout)
	fetcher := scraper.NewHTTPFetcher(scraper.DefaultFetchTimeout)
	browser := scraper.NewBrowserFetcher(scraper.DefaultFetchTimeout, cfg.Verbose)

	orch := orchestrator.New(scraper.New(fetcher, browser), m, l, a, notifier, orchestrator.Config{
		Sources:   sources,
		AutoApply: cfg.Attempter.AutoApply,
	})

	profiles := profile.NewStore(kv)
	return &app{
		cfg:          cfg,
		kv:           kv,
		ledger:       l,
		profiles:     profiles,
		orchestrator: orch,
		intake:       profile.NewIntake(client, profiles),
		llmClient:    client,
		notifier:     notifier,
	}, nil
}

// openStore connects the configured persistence backend.
func openStore(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		return store.ConnectPostgres(ctx, cfg.Store.PostgresDSN)
	case config.BackendRedis:
		return store.ConnectRedis(ctx, cfg.Store.RedisURL)
	default:
		log.Printf("using in-memory store; records will not survive this process")
		return store.NewMemory(), nil
	}
}
