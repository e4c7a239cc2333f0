package sorting

import (
	"sozblock/features/entries"
	"sozblock/features/profiles"
	"sozblock/internal/config"

	"github.com/alitto/pond/v2"
)

// Extractor converts listing entries into Records. Extraction is pure:
// profile data comes from the cache snapshot at call time, never from the
// network, and a missing profile degrades the record instead of blocking.
type Extractor struct {
	source      profiles.Source
	batchSize   int
	concurrency int
}

func NewExtractor(source profiles.Source, cfg *config.Config) *Extractor {
	return &Extractor{
		source:      source,
		batchSize:   cfg.Sorting.BatchSize,
		concurrency: cfg.Sorting.Concurrency,
	}
}

// ExtractBatch maps entries to records, order-preserving. Work is chunked
// in fixed-size batches across a pool; every chunk writes only its own
// index range, so the result needs no locking.
func (e *Extractor) ExtractBatch(items []*entries.Entry) []*Record {
	records := make([]*Record, len(items))
	if len(items) == 0 {
		return records
	}

	batch := e.batchSize
	if batch <= 0 {
		batch = len(items)
	}

	pool := pond.NewPool(e.concurrency)
	for start := 0; start < len(items); start += batch {
		end := min(start+batch, len(items))
		pool.Submit(func() {
			for i := start; i < end; i++ {
				records[i] = e.extract(items[i])
			}
		})
	}
	pool.StopAndWait()

	return records
}

func (e *Extractor) extract(entry *entries.Entry) *Record {
	record := &Record{
		Entry:         entry,
		ID:            parseEntryID(entry.ID),
		FavoriteCount: entry.FavoriteCount,
		ContentLength: len([]rune(entry.Content)),
		Author:        entry.Author,
	}

	if e.source != nil && entry.Author != "" {
		if profile, ok := e.source.Get(entry.Author); ok {
			record.Metrics = MetricsOf(profile)
		}
	}

	return record
}
