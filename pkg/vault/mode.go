package vault

// Mode is the server-wide operating mode,
// gating which operations a Vault will accept regardless of what any
// individual caller asks for.
type Mode int

const (
	// ModeConfig permits no vault mutation; only administrative setup
	// (opening vaults, declaring indexes) is expected in this mode.
	ModeConfig Mode = iota
	// ModeReadOnly permits reads but rejects place/remove/rebuild/optimize.
	ModeReadOnly
	// ModeReadWrite permits every operation.
	ModeReadWrite
)

// String renders mode using its configuration-document name.
func (m Mode) String() string {
	switch m {
	case ModeConfig:
		return "config"
	case ModeReadOnly:
		return "readonly"
	case ModeReadWrite:
		return "readwrite"
	default:
		return "unknown"
	}
}

// CheckMutable returns ErrNotPermitted unless mode allows mutation.
// Callers bind this before place, remove, rebuild, or optimize — the
// checks happen before any backend work starts.
func CheckMutable(mode Mode) error {
	if mode != ModeReadWrite {
		return ErrNotPermitted
	}
	return nil
}
