package evergreen

import (
	"time"

	"github.com/phanxgames/evergreen/internal/log"
)

// frameStats holds per-frame timing and draw counts.
// Only populated when Scene.debug is true.
type frameStats struct {
	updateTime time.Duration
	renderTime time.Duration
	instances  int
	meshes     int
	cards      int
}

// debugEnabled mirrors the most recently set Scene debug flag so node
// operations, which lack a Scene pointer, can check it cheaply.
var debugEnabled bool

// debugLog logs timing and draw counts for the last frame.
func (s *Scene) debugLog() {
	if !s.debug {
		return
	}
	st := s.stats
	log.Debug("frame",
		"update", st.updateTime,
		"render", st.renderTime,
		"total", st.updateTime+st.renderTime,
		"instances", st.instances,
		"meshes", st.meshes,
		"cards", st.cards,
		"status", s.lottery.Status(),
		"blend", s.Blend(),
	)
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("tree depth exceeds threshold", "node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a node has more children than the threshold.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		log.Warn("child count exceeds threshold", "node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
