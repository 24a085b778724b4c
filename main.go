package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	appcmd "linkgraph/cmd"
	"linkgraph/graph"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	logFormat := getenvDefault("LINKGRAPH_LOG_FORMAT", "text")
	logger := newLogger(logFormat)

	addr := getenvDefault("LINKGRAPH_HTTP_ADDR", "127.0.0.1:8080")
	engineKind := getenvDefault("LINKGRAPH_ENGINE", "duckdb")

	engine := newEngine(logger, engineKind)
	defer engine.Close()

	appCfg := appcmd.AppConfig{
		Address:           addr,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Logger:            logger,
	}
	app := appcmd.NewApp(engine, appCfg)

	if gen := newGenerator(logger); gen != nil {
		app.WithGenerator(gen)
	}
	if src := newSource(logger); src != nil {
		app.WithSource(src)
	}

	if err := app.Start(); err != nil {
		logger.Error("start app", "error", err)
		os.Exit(1)
	}
	logger.Info("linkgraph listening", "address", app.Address(), "engine", engineKind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := app.Wait(); err != nil {
		logger.Error("app exited with error", "error", err)
		os.Exit(1)
	}
}

// newEngine selects the graph engine backend: the embedded DuckDB engine
// (default) or a remote Kùzu API server.
func newEngine(logger *slog.Logger, kind string) graph.Engine {
	switch kind {
	case "duckdb":
		dbPath := getenvDefault("LINKGRAPH_DUCKDB_PATH", "")
		workDir := getenvDefault("LINKGRAPH_WORK_DIR", "./.temp/staging")
		engine, err := graph.OpenDuckEngine(dbPath, workDir)
		if err != nil {
			logger.Error("open duckdb engine", "error", err)
			os.Exit(1)
		}
		logger.Info("configured embedded engine", "db_path", dbPath, "work_dir", workDir)
		return engine
	case "kuzu":
		baseURL := getenvDefault("LINKGRAPH_KUZU_URL", "http://localhost:8001")
		dataDir := getenvDefault("LINKGRAPH_KUZU_DATA_DIR", "./.temp/staging")
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			logger.Error("create kuzu data dir", "error", err)
			os.Exit(1)
		}
		logger.Info("configured kuzu engine", "url", baseURL, "data_dir", dataDir)
		return graph.NewKuzuClient(baseURL, dataDir)
	default:
		logger.Error("unknown engine", "engine", kind, "valid", "duckdb, kuzu")
		os.Exit(1)
		return nil
	}
}

// newGenerator wires the natural-language query layer when enabled.
func newGenerator(logger *slog.Logger) graph.Generator {
	if !getenvBoolDefault(logger, "LINKGRAPH_QUERY_ENABLED", false) {
		logger.Info("query layer disabled", "hint", "set LINKGRAPH_QUERY_ENABLED=true to enable")
		return nil
	}
	ollamaURL := getenvDefault("LINKGRAPH_OLLAMA_URL", "http://localhost:11434")
	ollamaModel := getenvDefault("LINKGRAPH_OLLAMA_MODEL", "gemma3:4b")
	logger.Info("configured ollama generator", "url", ollamaURL, "model", ollamaModel)
	return graph.NewOllamaGenerator(ollamaURL, ollamaModel)
}

// newSource wires an optional server-side export source: an S3 bucket when
// LINKGRAPH_S3_BUCKET is set, else a local directory when
// LINKGRAPH_EXPORT_DIR is set.
func newSource(logger *slog.Logger) graph.Source {
	if bucket := os.Getenv("LINKGRAPH_S3_BUCKET"); bucket != "" {
		prefix := os.Getenv("LINKGRAPH_S3_PREFIX")
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Error("load aws config", "error", err)
			os.Exit(1)
		}
		client := s3.NewFromConfig(cfg)
		logger.Info("configured s3 export source", "bucket", bucket, "prefix", prefix)
		return graph.NewS3Source(client, bucket, prefix)
	}
	if dir := os.Getenv("LINKGRAPH_EXPORT_DIR"); dir != "" {
		logger.Info("configured directory export source", "dir", dir)
		return &graph.DirSource{Root: dir}
	}
	return nil
}

func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func getenvDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvBoolDefault(logger *slog.Logger, key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("invalid boolean env var", "key", key, "value", v, "error", err)
		os.Exit(1)
	}
	return b
}
