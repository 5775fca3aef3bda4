package ocean

import (
	"math"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Termination causes.
const (
	CauseImpact     = "Coastal Impact"
	CauseArrival    = "Arrival (West Coast)"
	CauseStagnation = "Stagnation"
	CauseTrapped    = "Trapped in Land"
	CausePruned     = "Merged/Pruned"
	CausePolarExit  = "Polar Exit"
	CauseDeflected  = "Deflected too far"
	CauseZeroSpeed  = "Zero Velocity"
)

const (
	msgEccStagnated = "ECC Stagnated"
	msgEcSpawnDeath = "EC Died on Spawn"
	msgEarlyArrival = "Early Arrival (Check Spawn/Gap)"
)

// agent is one particle of a current. Its id is its index in the month's
// agent slice.
type agent struct {
	id       int
	kind     core.AgentKind
	state    core.AgentState
	cause    string
	x, y     float64
	vx, vy   float64
	strength float64
	age      int

	stagnation   int
	lastX, lastY float64
	points       []core.StreamlinePoint
}

func (a *agent) alive() bool { return !a.state.Terminal() }

func (a *agent) speed() float64 { return math.Hypot(a.vx, a.vy) }

func (a *agent) snapshot() core.AgentSnapshot {
	return core.AgentSnapshot{
		ID:    a.id,
		Kind:  a.kind,
		State: a.state,
		Cause: a.cause,
		X:     a.x,
		Y:     a.y,
		VX:    a.vx,
		VY:    a.vy,
		Age:   a.age,
	}
}

// moved reports the Manhattan distance covered since the last call.
func (a *agent) moved() float64 {
	d := math.Abs(a.x-a.lastX) + math.Abs(a.y-a.lastY)
	a.lastX, a.lastY = a.x, a.y
	return d
}

func anyAlive(agents []*agent) bool {
	for _, a := range agents {
		if a.alive() {
			return true
		}
	}
	return false
}
