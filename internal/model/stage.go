package model

import "fmt"

// Stage is a season's championship stage.  Stages only move forward, one
// step at a time, through the order below.
type Stage string

const (
    StageRegular    Stage = "regular"
    StagePrelims    Stage = "prelims"
    StageSemifinals Stage = "semifinals"
    StageFinals     Stage = "finals"
    StageComplete   Stage = "complete"
)

var stageTransitions = map[Stage]Stage{
    StageRegular:    StagePrelims,
    StagePrelims:    StageSemifinals,
    StageSemifinals: StageFinals,
    StageFinals:     StageComplete,
}

// ParseStage validates s as a known stage.
func ParseStage(s string) (Stage, error) {
    st := Stage(s)
    switch st {
    case StageRegular, StagePrelims, StageSemifinals, StageFinals, StageComplete:
        return st, nil
    }
    return "", fmt.Errorf("unknown championship stage %q", s)
}

// Next returns the stage that follows s.
func (s Stage) Next() (Stage, error) {
    n, ok := stageTransitions[s]
    if !ok {
        return "", fmt.Errorf("no transition from stage %q", s)
    }
    return n, nil
}

// CanAdvance reports whether moving from one stage to another is a legal
// single forward step.
func CanAdvance(from, to Stage) bool {
    n, ok := stageTransitions[from]
    return ok && n == to
}
