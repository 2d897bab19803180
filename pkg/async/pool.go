package async

import (
	"context"
	"sync"
)

type MapAsyncIteratee[T any, R any] func(context.Context, T) (R, error)

// PoolMap runs fn over collection with at most concurrency goroutines in
// flight and returns one Result per input, in input order. It always waits
// for every call to finish; failures are carried in the corresponding
// Result instead of aborting the batch.
func PoolMap[T any, R any](ctx context.Context, concurrency int, collection []T, fn MapAsyncIteratee[T, R]) []Result[R] {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result[R], len(collection))
	semaphore := make(chan struct{}, concurrency)

	var wg sync.WaitGroup

	for i, item := range collection {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, item T) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			value, err := fn(ctx, item)
			results[i] = NewResult(value, err)
		}(i, item)
	}

	wg.Wait()

	return results
}
