package form

import (
	"context"
	"fmt"
)

type Mode int

const (
	Browsing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "browsing"
}

// State is the session mode plus, when editing, the key of the edited row.
type State struct {
	Mode Mode
	Key  string
}

// Writer persists form submissions; *record.Accessor implements it.
type Writer interface {
	InsertRecord(ctx context.Context, table string, values map[string]any) (any, error)
	UpdateRecord(ctx context.Context, table, id string, values map[string]any) error
}

// Session is the form state machine of one table:
//
//	Browsing --Edit(key)--> Editing(key)
//	Editing  --Submit ok--> Browsing
//	Editing  --Cancel-----> Browsing
//
// Submit while Browsing inserts a new row and stays Browsing. A failed
// submit leaves the state unchanged.
type Session struct {
	table  string
	fields []Field
	writer Writer
	state  State
}

func NewSession(table string, fields []Field, w Writer) *Session {
	return &Session{table: table, fields: fields, writer: w}
}

func (s *Session) Table() string   { return s.table }
func (s *Session) Fields() []Field { return s.fields }
func (s *Session) State() State    { return s.state }

// Edit switches to editing the row with the given key.
func (s *Session) Edit(key string) {
	s.state = State{Mode: Editing, Key: key}
}

// Cancel abandons any edit.
func (s *Session) Cancel() {
	s.state = State{Mode: Browsing}
}

// Submit validates input and writes it: an insert when browsing, an update
// of the edited row when editing. It returns the key of the written row
// (nil when an insert's key is not reported by the engine).
func (s *Session) Submit(ctx context.Context, input map[string]string) (any, error) {
	values, err := Values(s.fields, input)
	if err != nil {
		return nil, err
	}

	switch s.state.Mode {
	case Editing:
		if err := s.writer.UpdateRecord(ctx, s.table, s.state.Key, values); err != nil {
			return nil, err
		}
		key := s.state.Key
		s.state = State{Mode: Browsing}
		return key, nil
	case Browsing:
		return s.writer.InsertRecord(ctx, s.table, values)
	default:
		return nil, fmt.Errorf("unknown session mode %d", s.state.Mode)
	}
}
