package domain

import "sync/atomic"

// Progress is a lock-free completion counter shared between the dispatcher
// workers and any number of readers.
type Progress struct {
	total     atomic.Int64
	completed atomic.Int64
}

// NewProgress returns a counter expecting total units of work.
func NewProgress(total int) *Progress {
	p := &Progress{}
	p.total.Store(int64(total))
	return p
}

// Reset zeroes the counter and sets a new total.
func (p *Progress) Reset(total int) {
	p.completed.Store(0)
	p.total.Store(int64(total))
}

// Add records n finished units.
func (p *Progress) Add(n int64) {
	p.completed.Add(n)
}

// Completed returns the number of finished units.
func (p *Progress) Completed() int64 {
	return p.completed.Load()
}

// Total returns the expected number of units.
func (p *Progress) Total() int64 {
	return p.total.Load()
}

// Fraction returns completion in [0, 1]. An empty run is complete.
func (p *Progress) Fraction() float64 {
	total := p.Total()
	if total <= 0 {
		return 1
	}
	f := float64(p.Completed()) / float64(total)
	if f > 1 {
		f = 1
	}
	return f
}
