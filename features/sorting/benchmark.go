package sorting

import (
	"context"
	"math"
	"time"
)

const (
	defaultBenchmarkIterations = 10
	maxBenchmarkIterations     = 1000
)

// BenchmarkResult times one strategy over a fixed record set.
type BenchmarkResult struct {
	Strategy   string        `json:"strategy"`
	Iterations int           `json:"iterations"`
	Total      time.Duration `json:"total"`
	Avg        time.Duration `json:"avg"`
	Min        time.Duration `json:"min"`
	Max        time.Duration `json:"max"`
}

// Benchmark fetches the page once and times every registered strategy
// over its records. The page itself is never reordered, so a benchmark
// cannot disturb the undo state of a real sort.
func (s *Service) Benchmark(ctx context.Context, pageURL string, iterations int) ([]BenchmarkResult, int, error) {
	if iterations <= 0 {
		iterations = defaultBenchmarkIterations
	}
	if iterations > maxBenchmarkIterations {
		iterations = maxBenchmarkIterations
	}

	resolved, err := s.resolveURL(pageURL)
	if err != nil {
		return nil, 0, err
	}

	page, err := s.fetcher.FetchPage(ctx, resolved)
	if err != nil {
		return nil, 0, err
	}

	if s.prefetch != nil {
		s.prefetch.Prefetch(ctx, page.Authors())
	}

	records := s.extractor.ExtractBatch(page.Entries)

	catalogue := s.registry.List()
	results := make([]BenchmarkResult, 0, len(catalogue))
	for _, strategy := range catalogue {
		// One warmup round keeps first-use allocation out of the numbers.
		if _, err := s.engine.Sort(records, strategy, strategy.DefaultDirection); err != nil {
			return nil, 0, err
		}

		result := BenchmarkResult{
			Strategy:   strategy.Name,
			Iterations: iterations,
			Min:        time.Duration(math.MaxInt64),
		}
		for i := 0; i < iterations; i++ {
			started := time.Now()
			if _, err := s.engine.Sort(records, strategy, strategy.DefaultDirection); err != nil {
				return nil, 0, err
			}
			elapsed := time.Since(started)

			result.Total += elapsed
			result.Min = min(result.Min, elapsed)
			result.Max = max(result.Max, elapsed)
		}
		result.Avg = result.Total / time.Duration(iterations)
		results = append(results, result)
	}

	return results, len(records), nil
}
