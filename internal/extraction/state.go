package extraction

// State is a step of the extraction state machine
type State string

const (
	StateIdle             State = "idle"
	StateRetrievingSource State = "retrieving_source"
	StateExtracting       State = "extracting"
	StateValidating       State = "validating"
	StateRepairing        State = "repairing"
	StateReValidating     State = "revalidating"
	StatePersisting       State = "persisting"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// statusText is the progress-board text shown while in a non-terminal state
func (s State) statusText() string {
	switch s {
	case StateRetrievingSource:
		return "Retrieving source document..."
	case StateExtracting:
		return "Extracting resume data..."
	case StateValidating:
		return "Validating structure..."
	case StateRepairing:
		return "Repairing malformed structure..."
	case StateReValidating:
		return "Re-validating repaired structure..."
	case StatePersisting:
		return "Saving result..."
	case StateDone:
		return "Extraction complete"
	case StateFailed:
		return "Extraction failed"
	default:
		return "Waiting"
	}
}
