package cbl

import "strings"

// Phase is one of the three sequential CBL phases.
type Phase string

const (
	PhaseEngage      Phase = "engage"
	PhaseInvestigate Phase = "investigate"
	PhaseAct         Phase = "act"
)

// Phases lists the phases in the order a project moves through them.
var Phases = []Phase{PhaseEngage, PhaseInvestigate, PhaseAct}

func ParsePhase(raw string) (Phase, bool) {
	switch Phase(strings.ToLower(strings.TrimSpace(raw))) {
	case PhaseEngage:
		return PhaseEngage, true
	case PhaseInvestigate:
		return PhaseInvestigate, true
	case PhaseAct:
		return PhaseAct, true
	default:
		return "", false
	}
}

// Index is the zero-based position of the phase, or -1 for an invalid value.
func (p Phase) Index() int {
	for i, ph := range Phases {
		if ph == p {
			return i
		}
	}
	return -1
}

func (p Phase) Valid() bool { return p.Index() >= 0 }

// Previous returns the phase before p; engage has none.
func (p Phase) Previous() (Phase, bool) {
	i := p.Index()
	if i <= 0 {
		return "", false
	}
	return Phases[i-1], true
}
