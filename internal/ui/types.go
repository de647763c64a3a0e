package ui

// Focus names the dashboard region receiving keys
type Focus int

const (
	FocusInput Focus = iota
	FocusFilePrompt
	FocusResults
)

func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusFilePrompt:
		return "file"
	case FocusResults:
		return "results"
	default:
		return "unknown"
	}
}
