package workspace

import "sync"

// runWorkers processes files on a pool of workers and gathers the results
// that process accepts. Result order is not defined.
func runWorkers[T any](files []FileJob, jobs int, process func(FileJob) (T, bool)) []T {
	if len(files) == 0 {
		return nil
	}

	results := make(chan T, 128)
	jobQueue := make(chan FileJob, 128)
	var wg sync.WaitGroup

	workerCount := jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	worker := func() {
		defer wg.Done()
		for job := range jobQueue {
			if r, ok := process(job); ok {
				results <- r
			}
		}
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go worker()
	}

	go func() {
		for _, f := range files {
			jobQueue <- f
		}
		close(jobQueue)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []T
	for r := range results {
		all = append(all, r)
	}
	return all
}
