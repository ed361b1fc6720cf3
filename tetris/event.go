package tetris

type EventType string

const (
	EventMove        EventType = "move"        // A tetromino moved sideways.
	EventRotate      EventType = "rotate"      // A tetromino rotated.
	EventHardDrop    EventType = "drop"        // A tetromino was dropped down the stack.
	EventLineClear   EventType = "lineclear"   // Rows were cleared, see Rows.
	EventParticles   EventType = "particles"   // Burst of Count particles at X, Y.
	EventShake       EventType = "shake"       // Screen shake of Magnitude.
	EventCombo       EventType = "combo"       // Combo counter should be displayed.
	EventComboHidden EventType = "combohidden" // Combo display timed out.
	EventTSpin       EventType = "tspin"       // A T-Spin rotation was detected.
	EventAchievement EventType = "achievement" // An achievement was unlocked.
	EventPowerUp     EventType = "powerup"     // A power-up was used.
	EventSlowMotion  EventType = "slowmotion"  // Slow motion toggled, see Active.
	EventGameOver    EventType = "gameover"
)

// maxEvents bounds the pending events when nobody drains them.
const maxEvents = 256

// Event is a transient request for the renderer or the audio layer. Positions
// are in board cells and may be fractional to point at a cell's center.
type Event struct {
	Type        EventType
	Rows        []int
	X, Y        float64
	Count       int
	Magnitude   float64
	Achievement Achievement
	PowerUp     PowerUp
	Active      bool
}

func (t *Tetris) emit(e Event) {
	if len(t.events) >= maxEvents {
		t.events = t.events[1:]
	}
	t.events = append(t.events, e)
}

// Events returns the pending events and forgets them.
func (t *Tetris) Events() []Event {
	e := t.events
	t.events = nil
	return e
}
