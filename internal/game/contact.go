package game

// ContactSide tracks which side wall the main ball has claimed last.
// The active side names the wall that is currently the target.
type ContactSide uint8

const (
	ContactNone ContactSide = iota
	ContactLeftActive
	ContactRightActive
)

// Wall identifies a scoring side wall.
type Wall uint8

const (
	WallLeft Wall = iota
	WallRight
)

// WallColor is the highlight of a side wall as shown to the player.
type WallColor string

const (
	WallTarget WallColor = "green"
	WallSpent  WallColor = "red"
)

type contactTransition struct {
	next  ContactSide
	score bool
}

// contactTable[state][wall] gives the outcome of the main ball touching wall.
var contactTable = [3][2]contactTransition{
	ContactNone: {
		WallLeft:  {next: ContactRightActive, score: true},
		WallRight: {next: ContactLeftActive, score: true},
	},
	ContactLeftActive: {
		WallLeft:  {next: ContactRightActive, score: true},
		WallRight: {next: ContactLeftActive, score: false},
	},
	ContactRightActive: {
		WallLeft:  {next: ContactRightActive, score: false},
		WallRight: {next: ContactLeftActive, score: true},
	},
}

// Hit returns the state after the main ball touches w and whether the
// contact scores a point.
func (c ContactSide) Hit(w Wall) (ContactSide, bool) {
	t := contactTable[c][w]
	return t.next, t.score
}

// WallColors returns the left and right wall highlights for the state.
func (c ContactSide) WallColors() (left, right WallColor) {
	switch c {
	case ContactLeftActive:
		return WallTarget, WallSpent
	case ContactRightActive:
		return WallSpent, WallTarget
	default:
		return WallTarget, WallTarget
	}
}

func (c ContactSide) String() string {
	switch c {
	case ContactLeftActive:
		return "left_active"
	case ContactRightActive:
		return "right_active"
	default:
		return "none"
	}
}
