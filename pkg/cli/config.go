package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/tapir/pkg/adapter"
	"github.com/m-mizutani/tapir/pkg/repository"
	"github.com/m-mizutani/tapir/pkg/service/extract"
	"github.com/m-mizutani/tapir/pkg/tool"
	"github.com/m-mizutani/tapir/pkg/tool/websearch"
	"github.com/m-mizutani/tapir/pkg/usecase/chat"
	"github.com/m-mizutani/tapir/pkg/usecase/ingest"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	// Memory
	memoryPath string

	// Adapters
	geminiAPIKey string
	geminiModel  string
	openaiAPIKey string

	// Runtime
	logLevel    string
	turnTimeout time.Duration
	configPath  string
	folders     []string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini generative model",
			Sources:     cli.EnvVars("TAPIR_GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "memory-path",
			Aliases:     []string{"m"},
			Usage:       "Path of the persistent memory database",
			Value:       "memory_db",
			Sources:     cli.EnvVars("TAPIR_MEMORY_PATH"),
			Destination: &cfg.memoryPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("TAPIR_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.DurationFlag{
			Name:        "turn-timeout",
			Usage:       "Timeout for one query-to-answer turn",
			Value:       2 * time.Minute,
			Sources:     cli.EnvVars("TAPIR_TURN_TIMEOUT"),
			Destination: &cfg.turnTimeout,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file (persona, source folders)",
			Sources:     cli.EnvVars("TAPIR_CONFIG"),
			Destination: &cfg.configPath,
		},
	}
}

// ingestFlags returns flags for ingestion-related configuration
func ingestFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key for audio transcription (media ingestion is skipped without it)",
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringSliceFlag{
			Name:        "folder",
			Aliases:     []string{"f"},
			Usage:       "Source folder to ingest (repeatable, overrides config file)",
			Destination: &cfg.folders,
		},
	}
}

// fileConfig is the optional YAML configuration file
type fileConfig struct {
	Persona string   `yaml:"persona"`
	Folders []string `yaml:"folders"`
}

func (cfg *config) loadFile() (*fileConfig, error) {
	if cfg.configPath == "" {
		return &fileConfig{}, nil
	}

	data, err := os.ReadFile(cfg.configPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
	}

	return &fc, nil
}

// loggerContext installs a logger built from the configured level
func (cfg *config) loggerContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// runtime bundles the service handles constructed once per command and
// passed into the usecases. No ambient singletons.
type runtime struct {
	session  *chat.Session
	pipeline *ingest.Pipeline
	repo     repository.Repository
	folders  []string
}

func (r *runtime) Close() error {
	return r.repo.Close()
}

// build constructs the shared runtime from configuration. A missing Gemini
// API key is fatal here: the agent cannot function without a model.
func (cfg *config) build(ctx context.Context) (*runtime, error) {
	if cfg.geminiAPIKey == "" {
		return nil, goerr.New("gemini-api-key is required")
	}

	var geminiOpts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		geminiOpts = append(geminiOpts, adapter.WithGenerativeModel(cfg.geminiModel))
	}
	gemini, err := adapter.NewGemini(ctx, cfg.geminiAPIKey, geminiOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}

	repo, err := repository.NewChromem(cfg.memoryPath, chromem.EmbeddingFunc(gemini.Embedding))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open memory database")
	}

	fc, err := cfg.loadFile()
	if err != nil {
		return nil, err
	}

	session := chat.New(chat.NewInput{
		Repo:     repo,
		Gemini:   gemini,
		Registry: tool.New(websearch.New()),
		Persona:  fc.Persona,
	})

	var speech extract.Extractor
	if cfg.openaiAPIKey != "" {
		speech = extract.NewSpeech(cfg.openaiAPIKey)
	}
	pipeline := ingest.New(ingest.NewInput{
		Repo:   repo,
		PDF:    extract.NewPDF(),
		Speech: speech,
		OCR:    extract.NewOCR(),
	})

	folders := cfg.folders
	if len(folders) == 0 {
		folders = fc.Folders
	}
	if len(folders) == 0 {
		folders = ingest.DefaultFolders
	}

	return &runtime{
		session:  session,
		pipeline: pipeline,
		repo:     repo,
		folders:  folders,
	}, nil
}
