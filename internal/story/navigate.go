package story

type Outcome int

const (
	OutcomeNoOp Outcome = iota
	OutcomeMoved
	OutcomeExit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeExit:
		return "exit"
	default:
		return "noop"
	}
}

// Next moves to the following story, crossing into the next group when the
// current one is exhausted. Past the last story of the last group it reports
// OutcomeExit and returns pos unchanged.
func Next(groups []Group, pos Position) (Position, Outcome) {
	if !inRange(groups, pos) {
		return pos, OutcomeNoOp
	}
	if pos.Story < len(groups[pos.Group].Stories)-1 {
		return Position{Group: pos.Group, Story: pos.Story + 1}, OutcomeMoved
	}
	if pos.Group < len(groups)-1 {
		return Position{Group: pos.Group + 1, Story: 0}, OutcomeMoved
	}
	return pos, OutcomeExit
}

// Previous moves back one story, landing on the last story of the previous
// group when crossing groups. At the very first story it does nothing.
func Previous(groups []Group, pos Position) (Position, Outcome) {
	if !inRange(groups, pos) {
		return pos, OutcomeNoOp
	}
	if pos.Story > 0 {
		return Position{Group: pos.Group, Story: pos.Story - 1}, OutcomeMoved
	}
	if pos.Group > 0 {
		g := pos.Group - 1
		return Position{Group: g, Story: len(groups[g].Stories) - 1}, OutcomeMoved
	}
	return pos, OutcomeNoOp
}
