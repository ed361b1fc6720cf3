package tetris

type Achievement string

const (
	FirstLine   Achievement = "first-line"
	TetrisClear Achievement = "tetris"
	TSpin       Achievement = "t-spin"
	ComboKing   Achievement = "combo-king"
)

const comboKingThreshold = 5

// baseScore is indexed by the amount of lines cleared by a single lock.
var baseScore = [...]int{0, 100, 300, 500, 800}

func newAchievements() map[Achievement]bool {
	return map[Achievement]bool{
		FirstLine:   false,
		TetrisClear: false,
		TSpin:       false,
		ComboKing:   false,
	}
}

// lineScore returns the points for clearing n lines at once.
func lineScore(n, level, combo int) int {
	if n <= 0 {
		return 0
	}
	n = min(n, len(baseScore)-1)
	return baseScore[n] * level * (combo + 1)
}

// unlock sets the achievement once. Unlocking it again is a no-op.
func (t *Tetris) unlock(a Achievement) {
	if t.Achievements[a] {
		return
	}
	t.Achievements[a] = true
	t.emit(Event{Type: EventAchievement, Achievement: a})
}

// clearLines removes the complete rows, scores them and updates lines, level
// and combo. It returns the number of rows removed.
func (t *Tetris) clearLines() int {
	rows := t.Stack.fullRows()
	n := len(rows)
	if n == 0 {
		t.Combo = 0
		return 0
	}

	t.emit(Event{Type: EventLineClear, Rows: rows, Count: n})
	for _, y := range rows {
		for x := range t.Stack.cols() {
			t.emit(Event{Type: EventParticles, X: float64(x) + 0.5, Y: float64(y) + 0.5, Count: 5})
		}
	}
	t.Stack.removeRows(rows)

	t.Score += lineScore(n, t.Level, t.Combo)
	t.LinesClear += n
	// only one level per lock, even when a multi line clear crosses two
	// thresholds.
	if t.LinesClear >= t.Level*10 {
		t.Level++
	}

	t.unlock(FirstLine)
	if n == 4 {
		t.unlock(TetrisClear)
		t.emit(Event{Type: EventShake, Magnitude: 20})
	}

	t.Combo++
	if t.Combo >= comboKingThreshold {
		t.unlock(ComboKing)
	}
	t.showCombo()
	return n
}

// showCombo flags the combo as visible and hides it again after the combo
// display time. A newer combo restarts the countdown.
func (t *Tetris) showCombo() {
	t.ComboVisible = true
	t.emit(Event{Type: EventCombo, Count: t.Combo})
	if t.comboTask != 0 {
		t.sched.cancel(t.comboTask)
	}
	t.comboTask = t.schedule(t.config.ComboDisplay, func() {
		t.comboTask = 0
		t.ComboVisible = false
		t.emit(Event{Type: EventComboHidden})
	})
}
