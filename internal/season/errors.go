package season

import (
	"fmt"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// StagePrerequisiteError is returned when a championship stage is run
// before the result it builds on exists.  Nothing is written.
type StagePrerequisiteError struct {
	Stage   model.Stage
	Missing string
}

func (e *StagePrerequisiteError) Error() string {
	return fmt.Sprintf("cannot run %s: missing %q result", e.Stage, e.Missing)
}

// InvalidStageError is returned when an operation is invoked while the
// season is in a different stage, including re-running a finished stage.
type InvalidStageError struct {
	Op   string
	Want model.Stage
	Have model.Stage
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("%s requires stage %s, season is in %s", e.Op, e.Want, e.Have)
}
