package id

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Invoice ids must be assignable before the row exists (the deposit address
// is derived from the id) and must stay inside JavaScript's 53-bit safe
// integer range. Layout, most significant first:
//
//	millisecondsSinceEpoch (37 bits) | workerID (4 bits) | sequence (12 bits)
const (
	workerBits   = 4
	sequenceBits = 12
	maxWorkerID  = 1<<workerBits - 1
	maxSequence  = 1<<sequenceBits - 1
	maxMillis    = 1<<(53-workerBits-sequenceBits) - 1

	timestampShift = workerBits + sequenceBits
)

var (
	ErrNegativeEpoch    = errors.New("id: epoch must not be negative")
	ErrWorkerOutOfRange = fmt.Errorf("id: worker id must be in [0,%d]", maxWorkerID)
	ErrEpochExhausted   = errors.New("id: millisecond space since epoch exhausted")
)

// Generator produces monotonically increasing, collision-free invoice ids.
type Generator struct {
	mu       sync.Mutex
	epochMs  int64
	workerID int64
	lastMs   int64
	sequence int64

	now func() time.Time
}

// NewGenerator builds a Generator for the given epoch (Unix milliseconds)
// and worker id. A negative epoch or an out-of-range worker id is rejected.
func NewGenerator(epochMs int64, workerID int) (*Generator, error) {
	if epochMs < 0 {
		return nil, ErrNegativeEpoch
	}
	if workerID < 0 || workerID > maxWorkerID {
		return nil, ErrWorkerOutOfRange
	}
	return &Generator{
		epochMs:  epochMs,
		workerID: int64(workerID),
		lastMs:   -1,
		now:      time.Now,
	}, nil
}

// Next returns the next id. When a millisecond's 4096-id sequence space is
// exhausted it stalls until the clock moves to the next millisecond.
func (g *Generator) Next() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.millis()
	if ms < g.lastMs {
		// clock went backwards; hold at the last issued millisecond
		ms = g.lastMs
	}
	if ms == g.lastMs {
		g.sequence++
		if g.sequence > maxSequence {
			for ms <= g.lastMs {
				ms = g.millis()
			}
			g.sequence = 0
		}
	} else {
		g.sequence = 0
	}
	if ms > maxMillis {
		return 0, ErrEpochExhausted
	}
	g.lastMs = ms
	return ms<<timestampShift | g.workerID<<sequenceBits | g.sequence, nil
}

func (g *Generator) millis() int64 {
	return g.now().UnixMilli() - g.epochMs
}
