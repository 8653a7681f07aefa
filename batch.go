package geoprep

import (
	"sync"

	"github.com/godeepar/geoprep/monitoring"
)

// counter keys shared by every batch
const (
	Processed = "processed"
	Skipped   = "skipped"
	Failed    = "failed"
)

// SkipError marks a per-file condition that is reported but not counted as
// a failure (missing dimension, size mismatch, no points in range...).
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return e.Reason
}

// Skip ...
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// ForEach runs fn over files with at most workers goroutines at a time and
// tallies the outcome of every file. fn errors never stop the batch.
func ForEach(files []string, workers int, fn func(path string) error) *monitoring.Counter {
	counter := monitoring.NewCounter()
	counter.Set(Processed, 0)

	if workers < 1 {
		workers = 1
	}

	// the slots channel is the sized wait group
	slots := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, file := range files {
		wg.Add(1)
		slots <- struct{}{}

		go func(path string) {
			defer wg.Done()
			defer func() { <-slots }()

			err := fn(path)
			switch e := err.(type) {
			case nil:
				counter.Incr(Processed)
			case *SkipError:
				monitoring.NonFatal("%s: %s. Skipping file.", path, e.Reason)
				counter.Incr(Skipped)
			default:
				monitoring.Logf("An error occurred for %s: %v", path, err)
				counter.Incr(Failed)
			}
		}(file)
	}

	wg.Wait()

	return counter
}
