package services

import (
	"runtime"
	"sync"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/nsec3"
)

// progressFlushEvery bounds how many labels a worker finishes before it
// publishes them to the shared counter.
const progressFlushEvery = 256

// maxSkippedSamples is how many rejected labels each worker remembers for
// the run summary.
const maxSkippedSamples = 5

// DispatchResult is the merged output of all workers.
type DispatchResult struct {
	// Hashes maps encoded hash to label (or FQDN with StoreFQDN). Chunks
	// are contiguous and merged in worker order, so on a collision the label
	// that comes last in the input wins regardless of the worker count.
	Hashes         map[string]string
	Hashed         int
	Skipped        int
	Collisions     int
	SkippedSamples []string
}

type partial struct {
	hashes     map[string]string
	hashed     int
	skipped    int
	collisions int
	samples    []string
}

// Dispatcher fans a label set out over a fixed number of workers.
type Dispatcher struct {
	workers int
}

// NewDispatcher returns a Dispatcher with the given worker count. Values
// below one mean one worker per available CPU.
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Dispatcher{workers: workers}
}

// Workers returns the configured worker count.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch hashes every label under cfg and salt. The labels slice is only
// read. progress may be nil; otherwise it is reset to len(labels) and
// advanced as labels finish, hashed or skipped.
//
// Dispatch always runs to completion; cfg must already be validated.
func (d *Dispatcher) Dispatch(labels []string, cfg domain.RunConfig, salt []byte, progress *domain.Progress) *DispatchResult {
	if progress == nil {
		progress = domain.NewProgress(len(labels))
	} else {
		progress.Reset(len(labels))
	}

	workers := d.workers
	if workers > len(labels) {
		workers = len(labels)
	}
	if workers == 0 {
		return &DispatchResult{Hashes: map[string]string{}}
	}

	hasher := nsec3.NewHasher(cfg)
	chunk := (len(labels) + workers - 1) / workers
	parts := make([]*partial, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := min(start+chunk, len(labels))
		go func(workerID int, batch []string) {
			defer wg.Done()
			parts[workerID] = hashBatch(hasher, cfg, salt, batch, progress)
		}(i, labels[start:end])
	}
	wg.Wait()

	return merge(parts, len(labels))
}

func hashBatch(h nsec3.Hasher, cfg domain.RunConfig, salt []byte, batch []string, progress *domain.Progress) *partial {
	p := &partial{hashes: make(map[string]string, len(batch))}
	var pending int64

	for _, label := range batch {
		fqdn := cfg.FQDN(label)
		key, err := h.Hash(fqdn, salt, cfg.Iterations)
		if err != nil {
			p.skipped++
			if len(p.samples) < maxSkippedSamples {
				p.samples = append(p.samples, label)
			}
		} else {
			value := label
			if cfg.StoreFQDN {
				value = fqdn
			}
			if prev, ok := p.hashes[key]; ok && prev != value {
				p.collisions++
			}
			p.hashes[key] = value
			p.hashed++
		}

		pending++
		if pending == progressFlushEvery {
			progress.Add(pending)
			pending = 0
		}
	}
	if pending > 0 {
		progress.Add(pending)
	}

	return p
}

func merge(parts []*partial, sizeHint int) *DispatchResult {
	res := &DispatchResult{Hashes: make(map[string]string, sizeHint)}
	for _, p := range parts {
		res.Hashed += p.hashed
		res.Skipped += p.skipped
		res.Collisions += p.collisions
		if len(res.SkippedSamples) < maxSkippedSamples {
			room := maxSkippedSamples - len(res.SkippedSamples)
			res.SkippedSamples = append(res.SkippedSamples, p.samples[:min(room, len(p.samples))]...)
		}

		for k, v := range p.hashes {
			if prev, ok := res.Hashes[k]; ok && prev != v {
				res.Collisions++
			}
			res.Hashes[k] = v
		}
	}
	return res
}
