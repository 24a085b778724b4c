package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"linkgraph/graph"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Dependencies struct {
	AppMetrics       graph.AppMetrics
	ProcessFile      func(ctx context.Context, name string, data []byte) error
	ImportFromSource func(ctx context.Context) error
	HasSource        func() bool
	Commit           func(ctx context.Context) error
	Reset            func()
	LogLines         func() []string
	Ask              func(ctx context.Context, question string) (*graph.Answer, error)
	Schema           func(ctx context.Context) (*graph.Schema, error)
	Logger           *slog.Logger
}

type askRequest struct {
	Question string `json:"question"`
}

func Register(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.AppMetrics
	if metrics == nil {
		metrics = graph.NoopAppMetrics{}
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})
	e.GET("/metrics/app", func(c echo.Context) error {
		return c.JSON(http.StatusOK, metrics.Snapshot())
	})
	e.GET("/import/known", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"files": graph.KnownFileNames()})
	})

	e.POST("/import/files", func(c echo.Context) error {
		if deps.ProcessFile == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "importer unavailable"})
		}
		form, err := c.MultipartForm()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "multipart form required"})
		}
		files := form.File["files"]
		if len(files) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "no files in form field 'files'"})
		}

		importID := uuid.New().String()
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": "unreadable file " + fh.Filename})
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": "unreadable file " + fh.Filename})
			}
			if err := deps.ProcessFile(c.Request().Context(), fh.Filename, data); err != nil {
				return writeImportError(c, err)
			}
		}

		logger.InfoContext(c.Request().Context(), "import files processed",
			"import_id", importID,
			"file_count", len(files),
		)
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "ok",
			"import_id": importID,
			"files":     len(files),
			"log":       logLines(deps),
		})
	})

	e.POST("/import/source", func(c echo.Context) error {
		if deps.ImportFromSource == nil || deps.HasSource == nil || !deps.HasSource() {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "no export source configured"})
		}
		if err := deps.ImportFromSource(c.Request().Context()); err != nil {
			logger.ErrorContext(c.Request().Context(), "source import failed", "error", err)
			return writeImportError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"log":    logLines(deps),
		})
	})

	e.POST("/import/commit", func(c echo.Context) error {
		if deps.Commit == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "importer unavailable"})
		}
		if err := deps.Commit(c.Request().Context()); err != nil {
			logger.ErrorContext(c.Request().Context(), "commit failed", "error", err)
			return writeImportError(c, err)
		}
		logger.InfoContext(c.Request().Context(), "commit completed")
		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"log":    logLines(deps),
		})
	})

	e.POST("/import/reset", func(c echo.Context) error {
		if deps.Reset == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "importer unavailable"})
		}
		deps.Reset()
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})

	e.GET("/import/log", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"log": logLines(deps)})
	})

	e.GET("/schema", func(c echo.Context) error {
		if deps.Schema == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "engine unavailable"})
		}
		s, err := deps.Schema(c.Request().Context())
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "schema introspection failed", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, s)
	})

	e.POST("/query", func(c echo.Context) error {
		if deps.Ask == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "query layer unavailable"})
		}
		var req askRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		}
		ans, err := deps.Ask(c.Request().Context(), req.Question)
		if err != nil {
			switch {
			case errors.Is(err, graph.ErrEmptyQuestion):
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			case errors.Is(err, graph.ErrQueryLayerOff):
				return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
			}
			logger.ErrorContext(c.Request().Context(), "query failed",
				"question", truncateForLog(req.Question),
				"error", err,
			)
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
		}

		logger.InfoContext(c.Request().Context(), "query completed",
			"question", truncateForLog(req.Question),
			"result_count", len(ans.Rows),
		)
		return c.JSON(http.StatusOK, ans)
	})
}

func logLines(deps Dependencies) []string {
	if deps.LogLines == nil {
		return nil
	}
	lines := deps.LogLines()
	if lines == nil {
		lines = []string{}
	}
	return lines
}

func writeImportError(c echo.Context, err error) error {
	if errors.Is(err, errBatchCommitted) {
		return c.JSON(http.StatusConflict, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func truncateForLog(s string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > 100 {
		return string(runes[:100])
	}
	return s
}
