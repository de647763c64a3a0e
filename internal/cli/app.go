package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/ai/providers/gemini"
	"github.com/yildizm/nexus/internal/analyzer"
	"github.com/yildizm/nexus/internal/config"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/monitor"
	"github.com/yildizm/nexus/internal/telemetry"
	"github.com/yildizm/nexus/internal/timeline"
)

var registerProviders = sync.OnceValue(func() error {
	return gemini.Register()
})

// app is the wired analysis stack shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider ai.Provider
	metrics  *monitor.RunMetrics
	ctrl     *controller.Controller
	shutdown telemetry.ShutdownFunc
}

// newApp builds the provider and analysis client from cfg and wires them
// into a controller
func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	provider, err := createAIProvider(&cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	client, err := analyzer.NewClient(provider, &analyzer.Options{
		Model:            cfg.AI.Model,
		StrictValidation: cfg.AI.StrictValidation,
		Pattern:          createPattern(&cfg.Prompt),
		Logger:           log,
	})
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}

	a, err := newAppWithAnalyzer(cfg, log, client)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	a.provider = provider
	return a, nil
}

// newAppWithAnalyzer wires an existing analyzer; tests use it with fakes
func newAppWithAnalyzer(cfg *config.Config, log *logger.Logger, an controller.Analyzer, opts ...timeline.Option) (*app, error) {
	shutdown, err := telemetry.Init(telemetry.Options{
		Enabled: cfg.Telemetry.Enabled,
		Output:  cfg.Telemetry.Output,
		Pretty:  cfg.Telemetry.Pretty,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := monitor.NewRunMetrics()
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	simOpts := append([]timeline.Option{timeline.WithDelays(timeline.Delays{
		Extraction: cfg.Timeline.Extraction,
		StressTest: cfg.Timeline.StressTest,
		Audit:      cfg.Timeline.Audit,
	})}, opts...)

	ctrl := controller.New(an,
		controller.WithSimulator(timeline.New(simOpts...)),
		controller.WithLogger(log),
		controller.WithMetrics(metrics),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		ctrl:     ctrl,
		shutdown: shutdown,
	}, nil
}

// Close releases the provider and flushes telemetry
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.provider != nil {
		errs = append(errs, a.provider.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}

// createAIProvider creates the configured provider through the registry
func createAIProvider(aiConfig *config.AIConfig) (ai.Provider, error) {
	if err := registerProviders(); err != nil {
		return nil, err
	}

	switch aiConfig.Provider {
	case "", gemini.ProviderName:
		return createGeminiProvider(aiConfig)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", aiConfig.Provider)
	}
}

// createGeminiProvider creates a Gemini provider with configuration.
// A missing key is not an error here; the controller reports it.
func createGeminiProvider(aiConfig *config.AIConfig) (ai.Provider, error) {
	geminiConfig := &gemini.Config{
		APIKey:         aiConfig.APIKey,
		BaseURL:        aiConfig.Endpoint,
		DefaultModel:   aiConfig.Model,
		ThinkingBudget: int32(aiConfig.ThinkingBudget),
		Timeout:        aiConfig.Timeout,
	}

	// Apply defaults if not configured
	if geminiConfig.DefaultModel == "" {
		geminiConfig.DefaultModel = gemini.DefaultModel
	}

	return ai.CreateProvider(gemini.ProviderName, geminiConfig.ToProviderConfig())
}

// createPattern builds the analyst instruction from the prompt settings
func createPattern(p *config.PromptConfig) *analyzer.DueDiligencePattern {
	pattern := analyzer.DueDiligence().WithBenchmarks(analyzer.Benchmarks{
		Cohort:           p.Cohort,
		MedianValuation:  p.MedianValuation,
		GoodBurnMultiple: p.GoodBurnMultiple,
		GoodRuleOf40:     p.GoodRuleOf40,
	})
	if len(p.Scenarios) > 0 {
		pattern = pattern.WithScenarios(p.Scenarios...)
	}
	return pattern
}
