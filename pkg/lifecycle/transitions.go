package lifecycle

import (
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
)

// legalTransitions is the complete set of allowed job state changes. DONE
// and FAILED are terminal: nothing leaves them.
var legalTransitions = map[model.JobState][]model.JobState{
	model.JobStatePending: {model.JobStateLocked},
	model.JobStateLocked:  {model.JobStateDone, model.JobStatePending, model.JobStateFailed, model.JobStateExpired},
	model.JobStateExpired: {model.JobStatePending, model.JobStateLocked},
}

// CanTransition reports whether from -> to is a legal job state change.
func CanTransition(from, to model.JobState) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func illegalTransition(from, to model.JobState) error {
	return errors.NewError().
		WithCode(errors.CodeIllegalTransition).
		WithMessagef("illegal job transition %s -> %s", from, to)
}
