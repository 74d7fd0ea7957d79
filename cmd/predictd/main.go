package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"predictd/internal/common/fsutil"
	"predictd/internal/config"
	"predictd/internal/httpapi"
	"predictd/internal/predictor"
	"predictd/internal/registry"
	"predictd/internal/session"
	"predictd/internal/sysinfo"
	"predictd/internal/web"
	"predictd/pkg/types"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModelID = "gpt-4o"
)

func main() {
	// Load .env file if it exists; it feeds the usual PREDICTD_* and
	// OPENAI_API_KEY variables.
	godotenv.Load()

	addr := flag.String("addr", "", "HTTP listen address (default $PREDICTD_ADDR or :8080)")
	configPath := flag.String("config", os.Getenv("PREDICTD_CONFIG"), "Optional config file (.yaml/.json/.toml)")
	profilesDir := flag.String("profiles-dir", "", "Directory to scan for model profile files (*.yaml/*.json/*.toml)")
	baseURL := flag.String("base-url", "", "Upstream OpenAI-compatible base URL")
	defaultModel := flag.String("default-model", "", "Default model profile id when request omits model")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	logLevel := flag.String("log-level", "", "Log level: trace|debug|info|warn|error")
	flag.Parse()

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	// Flags win over the environment, the environment over the config
	// file, the config file over built-ins.
	listen := firstNonEmpty(*addr, os.Getenv("PREDICTD_ADDR"), cfg.Addr, ":8080")
	provider := firstNonEmpty(*baseURL, cfg.BaseURL, defaultBaseURL)
	modelID := firstNonEmpty(*defaultModel, cfg.DefaultModel)
	profiles := firstNonEmpty(*profilesDir, cfg.ProfilesDir)
	level := firstNonEmpty(*logLevel, cfg.LogLevel, "info")
	origins := splitCSV(*corsOrigins)
	if len(origins) == 0 {
		origins = cfg.CORSOrigins
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", level)
		os.Exit(1)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)

	var reg []types.Profile
	if profiles != "" {
		dir, err := fsutil.ExpandHome(profiles)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to resolve profiles directory")
		}
		if !fsutil.PathExists(dir) {
			logger.Fatal().Str("dir", profiles).Msg("profiles directory does not exist")
		}
		reg, err = registry.LoadDir(dir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load model profiles")
		}
		if len(reg) == 0 {
			logger.Fatal().Str("dir", profiles).Msg("profiles directory has no profiles")
		}
		if modelID != "" && !hasProfile(reg, modelID) {
			logger.Fatal().Str("model", modelID).Msg("default model not among loaded profiles")
		}
	} else {
		if modelID == "" {
			modelID = defaultModelID
		}
		reg = registry.Default(modelID, provider)
	}
	// A profile without its own base URL targets the global provider.
	for i := range reg {
		if reg[i].BaseURL == "" {
			reg[i].BaseURL = provider
		}
	}

	creds := config.NewCredentialStore(cfg)

	client := predictor.New(predictor.Config{
		Profiles:     reg,
		DefaultModel: modelID,
		Credential:   creds.Key,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:       logger,
	})
	var pred interface {
		Predict(ctx context.Context, req types.PredictRequest) (*types.PredictionResult, error)
	} = client
	if cfg.CacheTTLSeconds > 0 {
		cached := predictor.NewCached(client, time.Duration(cfg.CacheTTLSeconds)*time.Second)
		defer cached.Close()
		pred = cached
	}

	settings := session.DefaultSettings()
	settings.Model = client.DefaultModel()
	if cfg.Temperature > 0 {
		settings.Temperature = cfg.Temperature
	}
	if cfg.TopN > 0 {
		settings.TopN = cfg.TopN
	}
	if cfg.AutoUpdate != nil {
		settings.AutoUpdate = *cfg.AutoUpdate
	}

	sess := session.New(session.Config{
		Requester: pred,
		Settings:  settings,
		Logger:    logger,
	})
	defer sess.Close()

	assets, err := web.FS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load embedded interface")
	}

	httpapi.SetLogger(logger)
	if cfg.TimeoutSeconds > 0 {
		httpapi.SetPredictTimeoutSeconds(int64(cfg.TimeoutSeconds))
	}
	if len(origins) > 0 {
		httpapi.SetCORSOptions(true, origins,
			[]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			[]string{"Accept", "Content-Type"})
	}

	// Base context joins every event stream; cancelling it on shutdown
	// closes them instead of waiting on clients.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(httpapi.Deps{
		Session:     sess,
		Predictor:   pred,
		Credentials: creds,
		Profiles:    reg,
		Host:        sysinfo.Sampler{},
		Web:         assets,
	})
	srv := &http.Server{Addr: listen, Handler: mux}

	go func() {
		logger.Info().Str("addr", listen).Str("model", client.DefaultModel()).Str("base_url", provider).
			Msg("predictd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelStreams()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func hasProfile(profiles []types.Profile, id string) bool {
	for _, p := range profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
