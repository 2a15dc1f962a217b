package models

// ViewKind tags the active variant of a [ViewState].
type ViewKind int

const (
	ViewIdle ViewKind = iota
	ViewLoading
	ViewEmpty
	ViewContent
	ViewError
)

// String returns the variant name.
func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewEmpty:
		return "empty"
	case ViewContent:
		return "content"
	case ViewError:
		return "error"
	default:
		return "idle"
	}
}

// ViewState is the tagged view state of a session. Message is only set for [ViewError].
type ViewState struct {
	Kind    ViewKind
	Message string
}

func Idle() ViewState    { return ViewState{Kind: ViewIdle} }
func Loading() ViewState { return ViewState{Kind: ViewLoading} }
func Empty() ViewState   { return ViewState{Kind: ViewEmpty} }
func Content() ViewState { return ViewState{Kind: ViewContent} }

// Failed returns the error variant carrying a user-facing message.
func Failed(message string) ViewState { return ViewState{Kind: ViewError, Message: message} }

// Is reports whether the state is the given variant.
func (s ViewState) Is(k ViewKind) bool { return s.Kind == k }

// String renders the state, including the message for errors.
func (s ViewState) String() string {
	if s.Kind == ViewError {
		return "error(" + s.Message + ")"
	}
	return s.Kind.String()
}
