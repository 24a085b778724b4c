package graph

import (
	"context"
	"fmt"
	"strings"
)

// Converter drives one import batch: files go through ProcessFile one at a
// time and accumulate into the staging batch, then Commit materializes the
// graph. Not safe for concurrent use; callers serialize batches.
type Converter struct {
	engine  Engine
	batch   *Batch
	log     *ImportLog
	metrics AppMetrics
}

// NewConverter returns a converter with an empty staging batch.
func NewConverter(engine Engine, log *ImportLog) *Converter {
	if log == nil {
		log = NewImportLog(nil)
	}
	return &Converter{
		engine:  engine,
		batch:   NewBatch(),
		log:     log,
		metrics: NoopAppMetrics{},
	}
}

// WithMetrics installs a metrics sink for per-file counters.
func (c *Converter) WithMetrics(m AppMetrics) *Converter {
	if m != nil {
		c.metrics = m
	}
	return c
}

// Batch exposes the staging batch, mainly for tests and status reporting.
func (c *Converter) Batch() *Batch { return c.batch }

// Log exposes the ordered progress log.
func (c *Converter) Log() *ImportLog { return c.log }

// Reset clears staged state and the progress log for a new batch.
func (c *Converter) Reset() {
	c.batch.Reset()
	c.log.Reset()
}

// ProcessFile ingests one export file. Failures are isolated to the file:
// anything that goes wrong is logged and the batch continues. The file is
// staged into the engine's working filesystem for the duration of the bulk
// load and removed again on every exit path.
func (c *Converter) ProcessFile(ctx context.Context, fileName string, data []byte) {
	if !strings.HasSuffix(fileName, ".csv") {
		return
	}
	fileType := Classify(fileName)
	if fileType == TypeUnknown {
		c.log.Warn("skipping unknown file: %s", fileName)
		return
	}

	if err := c.engine.WriteFile(fileName, data); err != nil {
		c.log.Warn("error processing file %s: %v", fileName, err)
		return
	}
	defer func() {
		if err := c.engine.Unlink(fileName); err != nil {
			c.log.Warn("error removing staged file %s: %v", fileName, err)
		}
	}()

	loadStmt := fmt.Sprintf("LOAD FROM '%s' (header=true, ignore_errors=true) RETURN *", fileName)
	res, err := c.engine.Execute(ctx, loadStmt, nil)
	if err != nil {
		c.log.Warn("error processing file %s: %v", fileName, err)
		return
	}
	c.log.Append("found file %s with type %s (%d rows)", fileName, fileType, len(res.Rows))
	c.metrics.RecordFile(fileType, len(res.Rows))

	switch fileType {
	case TypeProfile:
		c.batch.ApplyProfile(res)
	case TypeConnections:
		c.batch.ApplyConnections(res)
	case TypeSkills:
		c.batch.ApplySkills(res)
	case TypeCompanyFollows:
		c.batch.ApplyCompanyFollows(res)
	case TypeEndorsementReceived:
		c.batch.ApplyEndorsements(res)
	case TypePositions:
		c.batch.ApplyPositions(res)
	case TypeMessages:
		c.batch.ApplyMessages(res)
	default:
		// Recognized export file with no extractor yet.
	}
}

// ProcessAll ingests every CSV the source lists, in the source's order.
// Per-file failure isolation applies; a source listing error is the only
// thing that aborts.
func (c *Converter) ProcessAll(ctx context.Context, src Source) error {
	names, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("list export files: %w", err)
	}
	for _, name := range names {
		data, err := src.Read(ctx, name)
		if err != nil {
			c.log.Warn("error reading export file %s: %v", name, err)
			continue
		}
		c.ProcessFile(ctx, name, data)
	}
	return nil
}
