package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// outcome is a finished episode reported by a worker.
type outcome struct {
	episode int
	res     *EpisodeResult
	err     error
}

// Run executes episodes 0..episodes-1 on a pool of workers and returns the
// results indexed by episode. workers <= 0 uses GOMAXPROCS. The first failing
// episode cancels the rest.
func (s *Simulation) Run(ctx context.Context, episodes, workers int) ([]*EpisodeResult, error) {
	if episodes <= 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, episodes)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	outcomes := make(chan outcome, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				res, err := s.RunEpisode(ctx, n)
				outcomes <- outcome{episode: n, res: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for n := 0; n < episodes; n++ {
			select {
			case jobs <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]*EpisodeResult, episodes)
	var firstErr error
	for o := range outcomes {
		if o.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("episode %d: %w", o.episode, o.err)
				cancel()
			}
			continue
		}
		results[o.episode] = o.res
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
