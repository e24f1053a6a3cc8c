package hiring

import "strings"

// Stage represents one discrete state in an application's hiring lifecycle.
// Values mirror the stage column stored in SQLite.
type Stage string

const (
	StageApplied   Stage = "APPLIED"
	StageScreening Stage = "SCREENING"
	StageInterview Stage = "INTERVIEW"
	StageOffer     Stage = "OFFER"
	StageHired     Stage = "HIRED"
	StageRejected  Stage = "REJECTED"
)

var allStages = []Stage{
	StageApplied,
	StageScreening,
	StageInterview,
	StageOffer,
	StageHired,
	StageRejected,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

// stageTransitions lists every allowed (from -> to) edge. HIRED and REJECTED
// are terminal: no outgoing edges, no resurrection, no stage skipping.
var stageTransitions = map[Stage][]Stage{
	StageApplied:   {StageScreening, StageRejected},
	StageScreening: {StageInterview, StageRejected},
	StageInterview: {StageOffer, StageRejected},
	StageOffer:     {StageHired, StageRejected},
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving from one stage to another is permitted
// by the workflow. It is total over all stage pairs: unknown or terminal
// sources simply yield false.
func CanTransition(from, to Stage) bool {
	for _, allowed := range stageTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a stage has no outgoing transitions.
func (s Stage) IsTerminal() bool {
	_, known := stageSet[s]
	return known && len(stageTransitions[s]) == 0
}
