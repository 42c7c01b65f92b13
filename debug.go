package rowan

import (
	"fmt"
	"sync/atomic"
	"time"
)

// debugMode enables tree-misuse checks and per-tick stats. Set through
// Config.Debug or SetDebug.
var debugMode atomic.Bool

// SetDebug toggles debug checks for every engine in the process.
func SetDebug(on bool) {
	debugMode.Store(on)
}

func debugEnabled() bool {
	return debugMode.Load()
}

// debugStats holds per-tick timing and counts. Only populated in debug mode.
type debugStats struct {
	updateTime    time.Duration
	propagateTime time.Duration
	flushTime     time.Duration
	nodesUpdated  int
	componentRuns int
	commandTokens int
}

// debugLog writes the tick stats at debug level.
func (e *Engine) debugLog(stats debugStats) {
	if !debugEnabled() {
		return
	}
	total := stats.updateTime + stats.propagateTime + stats.flushTime
	Logger().Debug().
		Uint64("frame", e.clock.Frame()).
		Dur("update", stats.updateTime).
		Dur("propagate", stats.propagateTime).
		Dur("flush", stats.flushTime).
		Dur("total", total).
		Int("nodes", stats.nodesUpdated).
		Int("components", stats.componentRuns).
		Int("tokens", stats.commandTokens).
		Msg("tick")
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("rowan debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn().
			Int("depth", depth).
			Int("threshold", debugMaxTreeDepth).
			Str("node", n.Name).
			Str("path", n.path).
			Msg("tree depth exceeds threshold")
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn().
			Int("children", len(n.children)).
			Int("threshold", debugMaxChildCount).
			Str("node", n.Name).
			Msg("child count exceeds threshold")
	}
}
