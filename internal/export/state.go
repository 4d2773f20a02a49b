package export

// State is the position of the export pipeline in its lifecycle.
type State int32

const (
	Idle State = iota
	Rendering
	Capturing
	Packaging
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Capturing:
		return "capturing"
	case Packaging:
		return "packaging"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
