package pipeline

import (
	"context"
	"sync"
)

// ProcessAll runs every path through the pipeline with at most
// concurrency images in flight. Results come back in input order; a
// failed image never aborts its siblings. Cancelling ctx stops handing
// out new work but lets in-flight images finish their own deadlines.
func (p *Pipeline) ProcessAll(ctx context.Context, paths []string, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(paths) {
		concurrency = len(paths)
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Process(ctx, paths[i])
			}
		}()
	}

	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = Result{
					Filename: paths[j],
					Kind:     FailureTimeout,
					Err:      ctx.Err(),
				}
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
