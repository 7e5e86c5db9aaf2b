package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/goodrec/nyc-ingest/internal/adapters/source"
	"github.com/goodrec/nyc-ingest/internal/domain/catalog"
	"github.com/goodrec/nyc-ingest/pkg/logger"
	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

// Artifact file names under the data directory.
const (
	categoriesFile        = "event_categories.json"
	eventFiltersFile      = "event_filters.json"
	restaurantFiltersFile = "restaurant_filters.json"
)

// upstreamFilters is the serialized shape of the upstream facet artifact.
type upstreamFilters struct {
	GeneratedAt time.Time `json:"generatedAt"`
	source.FacetVocabularies
}

// RunExtract regenerates the filter artifacts: the category catalog and
// restaurant facets come from the document store, the event filter
// vocabularies from the upstream APIs. Each artifact is independent; a
// failed one is logged and the rest still refresh, with the run reported
// failed at the end.
func (s *Service) RunExtract(ctx context.Context) error {
	runID := uuid.NewString()
	started := s.now()
	log := s.log.Named("extract")
	defer func() {
		metrics.RecordRunDuration(s.now().Sub(started))
	}()

	log.Info(ctx, "filter extraction starting",
		logger.String("run_id", runID),
		logger.String("data_dir", s.dataDir))

	var failed int

	if s.reader == nil {
		log.Warn(ctx, "no document store configured; skipping collection-derived artifacts")
	} else {
		if cat, err := catalog.BuildEventCatalog(ctx, s.reader, s.now()); err != nil {
			log.Error(ctx, "event catalog failed", logger.Error(err))
			metrics.RecordErrorByComponent("extract", "event_catalog")
			failed++
		} else {
			metrics.UpdateCatalogCategories(len(cat.Categories))
			metrics.UpdateCatalogKeywords(len(cat.TopKeywords))
			if err := s.writeArtifact(ctx, log, categoriesFile, cat); err != nil {
				failed++
			}
		}

		if filters, err := catalog.BuildRestaurantFilters(ctx, s.reader, s.now()); err != nil {
			log.Error(ctx, "restaurant filters failed", logger.Error(err))
			metrics.RecordErrorByComponent("extract", "restaurant_filters")
			failed++
		} else if err := s.writeArtifact(ctx, log, restaurantFiltersFile, filters); err != nil {
			failed++
		}
	}

	if s.facets == nil {
		log.Warn(ctx, "no facet fetcher configured; skipping upstream filters")
	} else {
		if vocab, err := s.facets.Fetch(ctx); err != nil {
			log.Error(ctx, "facet fetch failed", logger.Error(err))
			metrics.RecordErrorByComponent("extract", "facets")
			failed++
		} else {
			artifact := upstreamFilters{GeneratedAt: s.now().UTC(), FacetVocabularies: vocab}
			if err := s.writeArtifact(ctx, log, eventFiltersFile, artifact); err != nil {
				failed++
			}
		}
	}

	if failed > 0 {
		metrics.RecordRun("error")
		return fmt.Errorf("extract finished with %d failed artifacts", failed)
	}
	metrics.RecordRun("ok")
	log.Info(ctx, "extract finished", logger.Duration("took", s.now().Sub(started)))
	return nil
}

// writeArtifact writes one pretty-printed JSON artifact under the data
// directory, creating the directory on first use.
func (s *Service) writeArtifact(ctx context.Context, log logger.Logger, name string, v any) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		log.Error(ctx, "cannot create data dir",
			logger.String("dir", s.dataDir), logger.Error(err))
		metrics.RecordErrorByComponent("extract", "write")
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error(ctx, "cannot encode artifact",
			logger.String("artifact", name), logger.Error(err))
		metrics.RecordErrorByComponent("extract", "encode")
		return err
	}
	data = append(data, '\n')

	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error(ctx, "cannot write artifact",
			logger.String("path", path), logger.Error(err))
		metrics.RecordErrorByComponent("extract", "write")
		return err
	}

	metrics.RecordCatalogWrite()
	log.Info(ctx, "artifact written",
		logger.String("path", path),
		logger.Int("bytes", len(data)))
	return nil
}
