package pb

import (
	"errors"
	"fmt"
	"strings"

	"neontetris/tetris"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrMalformed is wrapped by every decoding error.
var ErrMalformed = errors.New("malformed message")

// emptyCell marks an empty position in the rows of stacks and grids.
const emptyCell = "."

// ActionToProto wraps a command for the wire.
func ActionToProto(a tetris.Action) *wrapperspb.StringValue {
	return wrapperspb.String(string(a))
}

// ActionFromProto validates a command received from the wire.
func ActionFromProto(v *wrapperspb.StringValue) (tetris.Action, error) {
	a, ok := tetris.ParseAction(v.GetValue())
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrMalformed, v.GetValue())
	}
	return a, nil
}

// SnapshotToProto encodes a snapshot. Stack rows and tetromino grids are sent
// as strings with one shape letter per cell, colors are restored from the
// shape on the other side.
func SnapshotToProto(sessionID string, s *tetris.Snapshot) (*structpb.Struct, error) {
	stack := make([]any, len(s.Stack))
	for y, row := range s.Stack {
		var b strings.Builder
		for _, c := range row {
			if c.Empty() {
				b.WriteString(emptyCell)
				continue
			}
			b.WriteString(string(c.Shape))
		}
		stack[y] = b.String()
	}

	powerUps := make(map[string]any, len(s.PowerUps))
	for p, n := range s.PowerUps {
		powerUps[string(p)] = n
	}
	achievements := make(map[string]any, len(s.Achievements))
	for a, ok := range s.Achievements {
		achievements[string(a)] = ok
	}
	events := make([]any, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, eventToMap(e))
	}

	st, err := structpb.NewStruct(map[string]any{
		"session_id":    sessionID,
		"phase":         string(s.Phase),
		"score":         s.Score,
		"lines":         s.LinesClear,
		"level":         s.Level,
		"combo":         s.Combo,
		"combo_visible": s.ComboVisible,
		"slow_motion":   s.SlowMotion,
		"can_hold":      s.CanHold,
		"ghost_y":       s.GhostY,
		"stack":         stack,
		"tetromino":     tetrominoToMap(s.Tetromino),
		"next":          tetrominoToMap(s.NextTetromino),
		"held":          tetrominoToMap(s.HeldTetromino),
		"power_ups":     powerUps,
		"achievements":  achievements,
		"events":        events,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return st, nil
}

func tetrominoToMap(t *tetris.Tetromino) any {
	if t == nil {
		return nil
	}
	rows := make([]any, len(t.Grid))
	for y, row := range t.Grid {
		var b strings.Builder
		for _, c := range row {
			if c {
				b.WriteString(string(t.Shape))
			} else {
				b.WriteString(emptyCell)
			}
		}
		rows[y] = b.String()
	}
	return map[string]any{
		"shape": string(t.Shape),
		"x":     t.X,
		"y":     t.Y,
		"rows":  rows,
	}
}

// eventToMap leaves out the zero fields, most events only set one or two.
func eventToMap(e tetris.Event) map[string]any {
	m := map[string]any{"type": string(e.Type)}
	if len(e.Rows) > 0 {
		rows := make([]any, len(e.Rows))
		for i, r := range e.Rows {
			rows[i] = r
		}
		m["rows"] = rows
	}
	if e.X != 0 {
		m["x"] = e.X
	}
	if e.Y != 0 {
		m["y"] = e.Y
	}
	if e.Count != 0 {
		m["count"] = e.Count
	}
	if e.Magnitude != 0 {
		m["magnitude"] = e.Magnitude
	}
	if e.Achievement != "" {
		m["achievement"] = string(e.Achievement)
	}
	if e.PowerUp != "" {
		m["power_up"] = string(e.PowerUp)
	}
	if e.Active {
		m["active"] = true
	}
	return m
}

// SnapshotFromProto decodes a snapshot and the id of the session it belongs
// to.
func SnapshotFromProto(st *structpb.Struct) (string, *tetris.Snapshot, error) {
	if st == nil {
		return "", nil, fmt.Errorf("%w: nil snapshot", ErrMalformed)
	}
	d := decoder{fields: st.GetFields()}
	s := &tetris.Snapshot{
		Phase:        tetris.Phase(d.getString("phase")),
		Score:        d.getInt("score"),
		LinesClear:   d.getInt("lines"),
		Level:        d.getInt("level"),
		Combo:        d.getInt("combo"),
		ComboVisible: d.getBool("combo_visible"),
		SlowMotion:   d.getBool("slow_motion"),
		CanHold:      d.getBool("can_hold"),
		GhostY:       d.getInt("ghost_y"),
		PowerUps:     tetris.Inventory{},
		Achievements: map[tetris.Achievement]bool{},
	}
	id := d.getString("session_id")

	for _, v := range d.getList("stack") {
		row := v.GetStringValue()
		cells := make([]tetris.Cell, 0, len(row))
		for _, r := range row {
			if string(r) == emptyCell {
				cells = append(cells, tetris.Cell{})
				continue
			}
			cells = append(cells, tetris.NewCell(tetris.Shape(string(r))))
		}
		s.Stack = append(s.Stack, cells)
	}
	s.Tetromino = d.getTetromino("tetromino")
	s.NextTetromino = d.getTetromino("next")
	s.HeldTetromino = d.getTetromino("held")

	for k, v := range d.getStruct("power_ups").GetFields() {
		s.PowerUps[tetris.PowerUp(k)] = int(v.GetNumberValue())
	}
	for k, v := range d.getStruct("achievements").GetFields() {
		s.Achievements[tetris.Achievement(k)] = v.GetBoolValue()
	}
	for _, v := range d.getList("events") {
		s.Events = append(s.Events, eventFromStruct(v.GetStructValue()))
	}

	if d.err != nil {
		return "", nil, d.err
	}
	return id, s, nil
}

func eventFromStruct(st *structpb.Struct) tetris.Event {
	f := st.GetFields()
	e := tetris.Event{
		Type:        tetris.EventType(f["type"].GetStringValue()),
		X:           f["x"].GetNumberValue(),
		Y:           f["y"].GetNumberValue(),
		Count:       int(f["count"].GetNumberValue()),
		Magnitude:   f["magnitude"].GetNumberValue(),
		Achievement: tetris.Achievement(f["achievement"].GetStringValue()),
		PowerUp:     tetris.PowerUp(f["power_up"].GetStringValue()),
		Active:      f["active"].GetBoolValue(),
	}
	for _, r := range f["rows"].GetListValue().GetValues() {
		e.Rows = append(e.Rows, int(r.GetNumberValue()))
	}
	return e
}

// decoder reads typed fields and keeps the first type mismatch. Missing
// fields decode to their zero value.
type decoder struct {
	fields map[string]*structpb.Value
	err    error
}

func (d *decoder) field(name string, ok func(*structpb.Value) bool) *structpb.Value {
	v, found := d.fields[name]
	if !found || v == nil {
		return nil
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil
	}
	if !ok(v) && d.err == nil {
		d.err = fmt.Errorf("%w: field %q has the wrong type", ErrMalformed, name)
		return nil
	}
	return v
}

func (d *decoder) getString(name string) string {
	return d.field(name, func(v *structpb.Value) bool {
		_, ok := v.GetKind().(*structpb.Value_StringValue)
		return ok
	}).GetStringValue()
}

func (d *decoder) getInt(name string) int {
	return int(d.field(name, func(v *structpb.Value) bool {
		_, ok := v.GetKind().(*structpb.Value_NumberValue)
		return ok
	}).GetNumberValue())
}

func (d *decoder) getBool(name string) bool {
	return d.field(name, func(v *structpb.Value) bool {
		_, ok := v.GetKind().(*structpb.Value_BoolValue)
		return ok
	}).GetBoolValue()
}

func (d *decoder) getList(name string) []*structpb.Value {
	return d.field(name, func(v *structpb.Value) bool {
		_, ok := v.GetKind().(*structpb.Value_ListValue)
		return ok
	}).GetListValue().GetValues()
}

func (d *decoder) getStruct(name string) *structpb.Struct {
	return d.field(name, func(v *structpb.Value) bool {
		_, ok := v.GetKind().(*structpb.Value_StructValue)
		return ok
	}).GetStructValue()
}

func (d *decoder) getTetromino(name string) *tetris.Tetromino {
	st := d.getStruct(name)
	if st == nil {
		return nil
	}
	f := st.GetFields()
	shape := tetris.Shape(f["shape"].GetStringValue())
	cell := tetris.NewCell(shape)
	t := &tetris.Tetromino{
		X:     int(f["x"].GetNumberValue()),
		Y:     int(f["y"].GetNumberValue()),
		Shape: shape,
		Color: cell.Color,
		Glow:  cell.Glow,
	}
	for _, r := range f["rows"].GetListValue().GetValues() {
		row := r.GetStringValue()
		grid := make([]bool, 0, len(row))
		for _, c := range row {
			grid = append(grid, string(c) != emptyCell)
		}
		t.Grid = append(t.Grid, grid)
	}
	return t
}
