package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goodrec/nyc-ingest/internal/adapters/source"
	"github.com/goodrec/nyc-ingest/internal/domain/dedupe"
	"github.com/goodrec/nyc-ingest/internal/domain/model"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

// sourceResult carries one adapter's outcome across the fan-out join.
type sourceResult struct {
	name   string
	events []model.Event
	err    error
}

// RunEvents executes one snapshot ingestion pass: fetch every source in
// parallel, aggregate in registry order with cross-source dedup, publish.
// A failed adapter loses only its own slice; the union of the rest still
// publishes. An empty union publishes nothing and keeps the previous
// snapshot alive.
func (s *Service) RunEvents(ctx context.Context) error {
	runID := uuid.NewString()
	started := s.now()
	log := s.log.Named("events")
	defer func() {
		metrics.RecordRunDuration(s.now().Sub(started))
	}()

	log.Info(ctx, "event ingestion starting",
		logger.String("run_id", runID),
		logger.Int("sources", len(s.sources)))

	results := make([]sourceResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			fetchStart := time.Now()
			events, err := src.Fetch(ctx)
			metrics.RecordSourceFetchDuration(src.Name(), time.Since(fetchStart).Seconds())
			results[i] = sourceResult{name: src.Name(), events: events, err: err}
		}(i, src)
	}
	wg.Wait()

	snapshot := s.aggregate(ctx, log, results)

	if len(snapshot) == 0 {
		log.Warn(ctx, "no events in window; keeping previous snapshot",
			logger.String("run_id", runID))
		metrics.RecordSnapshotSkip()
		metrics.RecordRun("ok")
		return nil
	}
	metrics.UpdateSnapshotSize(len(snapshot))

	if s.publisher == nil {
		s.logEventSample(ctx, log, snapshot)
		metrics.RecordRun("dry_run")
		return nil
	}

	publishStart := time.Now()
	inserted, err := s.publisher.PublishSnapshot(ctx, snapshot)
	if err != nil {
		metrics.RecordErrorByComponent("publisher", "publish")
		metrics.RecordRun("error")
		return fmt.Errorf("publish snapshot: %w", err)
	}
	metrics.RecordSnapshotPublish(time.Since(publishStart))
	metrics.RecordRun("ok")

	log.Info(ctx, "event ingestion finished",
		logger.String("run_id", runID),
		logger.Int("published", inserted),
		logger.Duration("took", s.now().Sub(started)))
	return nil
}

// aggregate joins per-source results in registry order and drops
// cross-source duplicates, first seen wins.
func (s *Service) aggregate(ctx context.Context, log logger.Logger, results []sourceResult) []model.Event {
	seen := dedupe.New()
	out := make([]model.Event, 0, 256)

	for _, res := range results {
		if res.err != nil {
			log.Error(ctx, "source failed; continuing without it",
				logger.String("source", res.name),
				logger.Error(res.err))
			metrics.RecordSourceError(res.name)
			metrics.RecordErrorByComponent("source."+res.name, "fetch")
			continue
		}

		kept := 0
		for _, ev := range res.events {
			metrics.RecordEventNormalized()
			if seen.SeenAndRecord(ctx, ev.Key()) {
				metrics.RecordEventDuplicate()
				continue
			}
			out = append(out, ev)
			kept++
		}
		metrics.RecordSourceEvents(res.name, len(res.events))
		log.Info(ctx, "source aggregated",
			logger.String("source", res.name),
			logger.Int("fetched", len(res.events)),
			logger.Int("kept", kept))
	}
	return out
}

// logEventSample prints what would have been published. Used when no
// document store is configured so local runs stay side-effect free.
func (s *Service) logEventSample(ctx context.Context, log logger.Logger, snapshot []model.Event) {
	n := s.sampleSize
	if n > len(snapshot) {
		n = len(snapshot)
	}
	log.Info(ctx, "dry run: no document store configured",
		logger.Int("events", len(snapshot)),
		logger.Int("sampled", n))
	for _, ev := range snapshot[:n] {
		log.Info(ctx, "sample event",
			logger.String("name", ev.Name),
			logger.String("date", ev.Date),
			logger.String("location", ev.Location),
			logger.String("price", ev.Price),
			logger.String("platform", ev.Platform))
	}
}
