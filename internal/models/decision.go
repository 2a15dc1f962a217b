package models

// Decision is the outcome of a swipe gesture.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionLike
	DecisionSkip
)

func (d Decision) String() string {
	switch d {
	case DecisionLike:
		return "like"
	case DecisionSkip:
		return "skip"
	default:
		return "none"
	}
}
