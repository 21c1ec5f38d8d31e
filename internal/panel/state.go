package panel

// State is the lifecycle position of a panel.
type State int

const (
	// Blank is fully powered down. It is the initial state.
	Blank State = iota
	// Preparing means powered and reset, waiting for Enable.
	Preparing
	// Resetting is held while the reset pulse runs inside Prepare.
	Resetting
	// Initializing is held while the init table plays, and kept if it fails.
	Initializing
	Enabled
	Disabling
)

func (s State) String() string {
	switch s {
	case Blank:
		return "blank"
	case Preparing:
		return "preparing"
	case Resetting:
		return "resetting"
	case Initializing:
		return "initializing"
	case Enabled:
		return "enabled"
	case Disabling:
		return "disabling"
	}
	return "invalid"
}
