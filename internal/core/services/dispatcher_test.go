package services

import (
	"bytes"
	"encoding/json"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/nsec3"
	"github.com/poyrazK/nsec3gen/internal/testutil"
)

func TestDispatchTenThousandLabels(t *testing.T) {
	labels := testutil.GenerateLabels(10000)
	cfg := domain.RunConfig{Domain: "example.com", Iterations: 10}

	res := NewDispatcher(0).Dispatch(labels, cfg, nil, nil)

	if len(res.Hashes) != 10000 {
		t.Errorf("Expected 10000 entries, got %d", len(res.Hashes))
	}
	if res.Hashed != 10000 || res.Skipped != 0 || res.Collisions != 0 {
		t.Errorf("Unexpected counters: hashed=%d skipped=%d collisions=%d", res.Hashed, res.Skipped, res.Collisions)
	}

	rec, _ := Assemble(cfg, res.Hashes, res.Hashed)
	if rec.WordlistSize != 10000 {
		t.Errorf("Expected wordlist_size 10000, got %d", rec.WordlistSize)
	}
}

func TestDispatchDeterministicAcrossWorkerCounts(t *testing.T) {
	labels := testutil.GenerateLabels(2500)
	cfg := domain.RunConfig{Domain: "example.org", SaltHex: "AABBCCDD", Iterations: 3}
	salt, err := cfg.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	encode := func(workers int) []byte {
		res := NewDispatcher(workers).Dispatch(labels, cfg, salt, nil)
		rec, _ := Assemble(cfg, res.Hashes, res.Hashed)
		data, errMarshal := json.Marshal(rec)
		if errMarshal != nil {
			t.Fatalf("Marshal failed: %v", errMarshal)
		}
		return data
	}

	single := encode(1)
	for _, workers := range []int{2, 3, 7, 16, runtime.NumCPU()} {
		if got := encode(workers); !bytes.Equal(single, got) {
			t.Errorf("Record with %d workers differs from single-worker record", workers)
		}
	}
}

func TestDispatchValuesAreLabelsOrFQDNs(t *testing.T) {
	labels := []string{"www", "mail"}
	cfg := domain.RunConfig{Domain: "example.com"}

	res := NewDispatcher(2).Dispatch(labels, cfg, nil, nil)
	want, _ := nsec3.HashName("www.example.com", nil, 0)
	if res.Hashes[want] != "www" {
		t.Errorf("Expected label value www under %s, got %q", want, res.Hashes[want])
	}

	cfg.StoreFQDN = true
	res = NewDispatcher(2).Dispatch(labels, cfg, nil, nil)
	if res.Hashes[want] != "www.example.com" {
		t.Errorf("Expected FQDN value under %s, got %q", want, res.Hashes[want])
	}
}

func TestDispatchSkipsInvalidLabels(t *testing.T) {
	labels := []string{"www", "bad label", "", "api", "a..b", "mail"}
	cfg := domain.RunConfig{Domain: "example.com"}
	progress := domain.NewProgress(0)

	res := NewDispatcher(3).Dispatch(labels, cfg, nil, progress)

	if res.Hashed != 3 {
		t.Errorf("Expected 3 hashed labels, got %d", res.Hashed)
	}
	if res.Skipped != 3 {
		t.Errorf("Expected 3 skipped labels, got %d", res.Skipped)
	}
	if len(res.SkippedSamples) != 3 {
		t.Errorf("Expected 3 skipped samples, got %v", res.SkippedSamples)
	}
	if progress.Completed() != int64(len(labels)) {
		t.Errorf("Expected progress %d, got %d", len(labels), progress.Completed())
	}
	if progress.Total() != int64(len(labels)) {
		t.Errorf("Expected total %d, got %d", len(labels), progress.Total())
	}
}

func TestDispatchWireFormRejectsLongLabels(t *testing.T) {
	long := string(bytes.Repeat([]byte("x"), 64))
	cfg := domain.RunConfig{Domain: "example.com", Canonical: domain.CanonicalWire}

	res := NewDispatcher(1).Dispatch([]string{"www", long}, cfg, nil, nil)
	if res.Hashed != 1 || res.Skipped != 1 {
		t.Errorf("Expected 1 hashed and 1 skipped, got %d and %d", res.Hashed, res.Skipped)
	}
}

func TestDispatchDuplicateLabelsAreNotCollisions(t *testing.T) {
	labels := []string{"www", "www", "WWW"}
	res := NewDispatcher(3).Dispatch(labels, domain.RunConfig{Domain: "example.com"}, nil, nil)

	if len(res.Hashes) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(res.Hashes))
	}
	// "www" and "WWW" hash identically but are different values.
	if res.Collisions != 1 {
		t.Errorf("Expected 1 collision, got %d", res.Collisions)
	}
}

func TestDispatchEmptyInput(t *testing.T) {
	res := NewDispatcher(4).Dispatch(nil, domain.RunConfig{Domain: "example.com"}, nil, nil)
	if res.Hashes == nil || len(res.Hashes) != 0 || res.Hashed != 0 {
		t.Errorf("Expected empty result, got %+v", res)
	}
}

func TestDispatchWorkerDefaults(t *testing.T) {
	if got := NewDispatcher(0).Workers(); got != runtime.GOMAXPROCS(0) {
		t.Errorf("Expected GOMAXPROCS workers, got %d", got)
	}
	if got := NewDispatcher(-3).Workers(); got < 1 {
		t.Errorf("Expected at least one worker, got %d", got)
	}
	if got := NewDispatcher(5).Workers(); got != 5 {
		t.Errorf("Expected 5 workers, got %d", got)
	}
}

func TestDispatchProgressReadableWhileRunning(t *testing.T) {
	labels := testutil.GenerateLabels(20000)
	cfg := domain.RunConfig{Domain: "example.com", Iterations: 20}
	progress := domain.NewProgress(len(labels))

	var wg sync.WaitGroup
	done := make(chan struct{})
	var observed []int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				observed = append(observed, progress.Completed())
				time.Sleep(time.Millisecond)
			}
		}
	}()

	NewDispatcher(4).Dispatch(labels, cfg, nil, progress)
	close(done)
	wg.Wait()

	for i := 1; i < len(observed); i++ {
		if observed[i] < observed[i-1] {
			t.Fatalf("Progress went backwards: %d then %d", observed[i-1], observed[i])
		}
	}
	if progress.Completed() != int64(len(labels)) {
		t.Errorf("Expected final progress %d, got %d", len(labels), progress.Completed())
	}
	if progress.Fraction() != 1 {
		t.Errorf("Expected fraction 1, got %f", progress.Fraction())
	}
}

func BenchmarkDispatch(b *testing.B) {
	labels := testutil.GenerateLabels(5000)
	cfg := domain.RunConfig{Domain: "example.com", Iterations: 10}
	d := NewDispatcher(0)
	for i := 0; i < b.N; i++ {
		d.Dispatch(labels, cfg, []byte{0xca, 0xfe}, nil)
	}
}
