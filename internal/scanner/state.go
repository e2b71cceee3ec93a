// Package scanner drives a scan station: it owns the scanning device, filters
// decode events and turns accepted codes into inventory searches.
package scanner

// State is the scan controller state.
type State int

const (
	StateIdle State = iota
	StateEnumeratingCameras
	StateCameraSelected
	StateScanning
	StatePausedAwaitingResult
	StateMatchFound
	StateNoMatch
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnumeratingCameras:
		return "enumerating-cameras"
	case StateCameraSelected:
		return "camera-selected"
	case StateScanning:
		return "scanning"
	case StatePausedAwaitingResult:
		return "paused-awaiting-result"
	case StateMatchFound:
		return "match-found"
	case StateNoMatch:
		return "no-match"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Outcome reports what a decode or manual search led to.
type Outcome int

const (
	// OutcomeIgnored means the event was filtered before any search
	OutcomeIgnored Outcome = iota
	OutcomeMatch
	OutcomeNoMatch
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMatch:
		return "match"
	case OutcomeNoMatch:
		return "no-match"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}
