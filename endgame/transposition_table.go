package endgame

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/zobrist"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 16

const depthMask = (1 << 6) - 1

// Never go below 2^16 entries.
const minSizePowerOf2 = 16

// 16 bytes (entrySize)
type TableEntry struct {
	hash         uint64
	score        int8
	flagAndDepth uint8
	best         board.Square
}

func (t TableEntry) flag() uint8 {
	return t.flagAndDepth >> 6
}

// depth is the number of empty squares in the stored position.
func (t TableEntry) depth() uint8 {
	return t.flagAndDepth & depthMask
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag() != 0
}

// TranspositionTable caches endgame results and bounds. It belongs to one
// solver at a time and is not safe for concurrent use.
type TranspositionTable struct {
	table        []TableEntry
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
	// "type 2" collisions. A type 2 collision happens when two positions
	// land in the same bucket.
	t2collisions atomic.Uint64

	zobrist *zobrist.Zobrist
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.lookups.Add(1)
	idx := zval & t.sizeMask
	if t.table[idx].hash != zval {
		if t.table[idx].valid() {
			// There is another unrelated node at this position.
			t.t2collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return t.table[idx]
}

func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	idx := zval & t.sizeMask
	tentry.hash = zval
	// just overwrite whatever is there for now.
	t.table[idx] = tentry
	t.created.Add(1)
}

// Reset sizes the table to the biggest power of 2 that fits in the given
// fraction of system memory, and clears it.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	// find biggest power of 2 lower than desired.
	t.sizePowerOf2 = minSizePowerOf2
	if desiredNElems > 1 {
		t.sizePowerOf2 = max(minSizePowerOf2, int(math.Log2(desiredNElems)))
	}

	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reset := false
	if t.table != nil && len(t.table) == numElems {
		reset = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}

	if t.zobrist == nil {
		log.Info().Msg("creating zobrist hash")
		t.zobrist = &zobrist.Zobrist{}
		t.zobrist.Initialize()
	}

	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Bool("reset", reset).
		Msg("transposition-table-size")

	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

func (t *TranspositionTable) Zobrist() *zobrist.Zobrist {
	return t.zobrist
}

// Stats returns the stored, looked-up, hit and collision counts.
func (t *TranspositionTable) Stats() (created, lookups, hits, collisions uint64) {
	return t.created.Load(), t.lookups.Load(), t.hits.Load(), t.t2collisions.Load()
}
