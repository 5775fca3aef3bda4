// pkg/core/enums.go
package core

import "fmt"

// StreamlineKind classifies a streamline by the agent that produced it.
type StreamlineKind string

const (
	StreamlineMain   StreamlineKind = "main"
	StreamlineSplitN StreamlineKind = "split_n"
	StreamlineSplitS StreamlineKind = "split_s"
)

// ImpactKind says which current produced an impact.
type ImpactKind string

const (
	ImpactECC ImpactKind = "ECC"
	ImpactEC  ImpactKind = "EC"
)

// DiagnosticKind classifies an ocean engine anomaly.
type DiagnosticKind string

const (
	DiagEcInfantDeath DiagnosticKind = "EC_INFANT_DEATH"
	DiagEccStuck      DiagnosticKind = "ECC_STUCK"
)

// AgentKind is the role of an ocean agent.
type AgentKind int

const (
	AgentECC AgentKind = iota
	AgentECNorth
	AgentECSouth
)

func (k AgentKind) String() string {
	switch k {
	case AgentECC:
		return "ECC"
	case AgentECNorth:
		return "EC_N"
	case AgentECSouth:
		return "EC_S"
	default:
		return fmt.Sprintf("agent(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k AgentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name written by MarshalText.
func (k *AgentKind) UnmarshalText(b []byte) error {
	for _, c := range []AgentKind{AgentECC, AgentECNorth, AgentECSouth} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown agent kind %q", b)
}

// StreamlineKind maps the agent role to the streamline type it records.
func (k AgentKind) StreamlineKind() StreamlineKind {
	switch k {
	case AgentECNorth:
		return StreamlineSplitN
	case AgentECSouth:
		return StreamlineSplitS
	default:
		return StreamlineMain
	}
}

// AgentState is the lifecycle state of an ocean agent.
type AgentState int

const (
	StateActive AgentState = iota
	StateCrawling
	StateImpact
	StateStuck
	StateDead
)

func (s AgentState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCrawling:
		return "crawling"
	case StateImpact:
		return "impact"
	case StateStuck:
		return "stuck"
	case StateDead:
		return "dead"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s AgentState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name written by MarshalText.
func (s *AgentState) UnmarshalText(b []byte) error {
	for _, c := range []AgentState{StateActive, StateCrawling, StateImpact, StateStuck, StateDead} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown agent state %q", b)
}

// Terminal reports whether the agent has stopped moving for good.
func (s AgentState) Terminal() bool {
	switch s {
	case StateActive, StateCrawling:
		return false
	default:
		return true
	}
}
