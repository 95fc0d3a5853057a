package routing

import (
	"time"

	"github.com/okdaichi/meshroute/internal/wire"
)

// FloodOutcome tells the Node orchestrator what to do after
// HandleData processes one frame.
type FloodOutcome int

const (
	// FloodDrop means the frame was a duplicate or exhausted; do nothing.
	FloodDrop FloodOutcome = iota
	// FloodDeliver means this node is the destination; deliver locally.
	FloodDeliver
	// FloodForward means the frame (mutated in place: TTL decremented,
	// a hop annotation appended) should be sent to every neighbor. The
	// neighbor it arrived from is not known, so it is included.
	FloodForward
)

// FloodingEngine is the stateless-except-for-dedup flooding engine.
// Grounded directly on spec.md §4.9; the teacher has no flooding
// analogue, so the shape here is new, but the dedup mechanism reuses
// SeenCache (itself grounded on sdn.announceTable).
//
// Unlike the reference implementation, TTL is enforced here: spec.md
// §9 names the reference's TTL-blindness a bug rather than a design
// choice, so HandleData decrements and checks it.
type FloodingEngine struct {
	self string
	seen *SeenCache
}

func NewFloodingEngine(self string, seen *SeenCache) *FloodingEngine {
	return &FloodingEngine{self: self, seen: seen}
}

// HandleData applies dedup, destination check, and TTL enforcement to
// an inbound DATA frame, mutating it in place when it is to be
// forwarded (TTL decremented, hop annotation appended).
func (e *FloodingEngine) HandleData(f *wire.Frame) FloodOutcome {
	if e.seen.SeenOrRecord(f.ID) {
		return FloodDrop
	}

	if f.Dst == e.self {
		return FloodDeliver
	}

	if f.TTL <= 0 {
		return FloodDrop
	}
	f.TTL--
	f.Headers = append(f.Headers, wire.HopAnnotation{Hop: e.self, At: time.Now()})
	return FloodForward
}
