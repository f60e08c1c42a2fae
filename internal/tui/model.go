// Package tui is the interactive table browser and record editor.
package tui

import (
	"context"
	"fmt"

	"db-crud/internal/form"
	"db-crud/internal/record"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type screen int

const (
	screenTables screen = iota
	screenRows
	screenForm
)

type Model struct {
	ctx    context.Context
	acc    *record.Accessor
	logger *zap.Logger

	screen screen
	tables []string
	cursor int

	table string
	rows  []record.Record
	grid  table.Model

	session *form.Session
	inputs  []textinput.Model
	focus   int

	busy    bool
	notice  string // blocking error, must be dismissed
	message string
	width   int
	height  int
}

type tablesLoadedMsg []string

type rowsLoadedMsg struct {
	table string
	rows  []record.Record
}

type formReadyMsg struct {
	session *form.Session
	input   map[string]string
}

type savedMsg struct{ key any }

type deletedMsg struct{ key string }

type errMsg struct{ err error }

func New(ctx context.Context, acc *record.Accessor, logger *zap.Logger) Model {
	return Model{
		ctx:    ctx,
		acc:    acc,
		logger: logger,
		grid:   table.New(table.WithFocused(true), table.WithHeight(15)),
	}
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, acc *record.Accessor, logger *zap.Logger) error {
	p := tea.NewProgram(New(ctx, acc, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadTables()
}

func (m Model) loadTables() tea.Cmd {
	return func() tea.Msg {
		return tablesLoadedMsg(m.acc.GetAllTables())
	}
}

func (m Model) loadRows(tableName string) tea.Cmd {
	return func() tea.Msg {
		rows, err := m.acc.GetAll(m.ctx, tableName)
		if err != nil {
			return errMsg{err}
		}
		return rowsLoadedMsg{table: tableName, rows: rows}
	}
}

// openForm builds the field descriptors and, when editing, prefills them
// from the stored row.
func (m Model) openForm(tableName, editKey string) tea.Cmd {
	return func() tea.Msg {
		fields, err := form.Build(m.ctx, m.acc.Catalog(), tableName, m.acc, m.logger)
		if err != nil {
			return errMsg{err}
		}
		s := form.NewSession(tableName, fields, m.acc)
		input := map[string]string{}
		if editKey != "" {
			rec, err := m.acc.GetByID(m.ctx, tableName, editKey)
			if err != nil {
				return errMsg{err}
			}
			input = form.Prefill(fields, rec)
			s.Edit(editKey)
		}
		return formReadyMsg{session: s, input: input}
	}
}

func (m Model) submit(s *form.Session, input map[string]string) tea.Cmd {
	return func() tea.Msg {
		k, err := s.Submit(m.ctx, input)
		if err != nil {
			return errMsg{err}
		}
		return savedMsg{key: k}
	}
}

func (m Model) deleteRow(tableName, k string) tea.Cmd {
	return func() tea.Msg {
		if err := m.acc.DeleteRecord(m.ctx, tableName, k); err != nil {
			return errMsg{err}
		}
		return deletedMsg{key: k}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 8; h > 3 {
			m.grid.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.notice != "" {
			if key.Matches(msg, keys.Open, keys.Back) {
				m.notice = ""
			}
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		switch m.screen {
		case screenTables:
			return m.handleTablesKey(msg)
		case screenRows:
			return m.handleRowsKey(msg)
		case screenForm:
			return m.handleFormKey(msg)
		}

	case tablesLoadedMsg:
		m.tables = msg
		if m.cursor >= len(m.tables) {
			m.cursor = 0
		}

	case rowsLoadedMsg:
		m.busy = false
		m.table = msg.table
		m.rows = msg.rows
		m.setGrid()
		m.screen = screenRows

	case formReadyMsg:
		m.busy = false
		m.session = msg.session
		m.inputs = newInputs(msg.session.Fields(), msg.input)
		m.focus = 0
		m.screen = screenForm
		if len(m.inputs) > 0 {
			return m, m.inputs[0].Focus()
		}

	case savedMsg:
		m.busy = false
		m.message = fmt.Sprintf("Saved %s %s", m.table, form.FormatValue(msg.key))
		m.screen = screenRows
		m.session = nil
		m.inputs = nil
		return m, m.loadRows(m.table)

	case deletedMsg:
		m.busy = false
		m.message = fmt.Sprintf("Deleted %s %s", m.table, msg.key)
		return m, m.loadRows(m.table)

	case errMsg:
		m.busy = false
		m.notice = msg.err.Error()
		m.logger.Warn("operation failed", zap.String("table", m.table), zap.Error(msg.err))
	}

	return m, nil
}

func (m Model) handleTablesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Refresh):
		return m, m.loadTables()
	case key.Matches(msg, keys.Open):
		if m.cursor < len(m.tables) {
			m.busy = true
			m.message = ""
			return m, m.loadRows(m.tables[m.cursor])
		}
	case msg.String() == "up" || msg.String() == "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case msg.String() == "down" || msg.String() == "j":
		if m.cursor < len(m.tables)-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m Model) handleRowsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.screen = screenTables
		m.message = ""
		return m, nil
	case key.Matches(msg, keys.Refresh):
		return m, m.loadRows(m.table)
	case key.Matches(msg, keys.New):
		m.busy = true
		return m, m.openForm(m.table, "")
	case key.Matches(msg, keys.Open):
		if k, ok := m.selectedKey(); ok {
			m.busy = true
			return m, m.openForm(m.table, k)
		}
		return m, nil
	case key.Matches(msg, keys.Delete):
		if k, ok := m.selectedKey(); ok {
			m.busy = true
			return m, m.deleteRow(m.table, k)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.session.Cancel()
		m.session = nil
		m.inputs = nil
		m.screen = screenRows
		return m, nil
	case key.Matches(msg, keys.Save):
		m.busy = true
		return m, m.submit(m.session, m.input())
	case key.Matches(msg, keys.Next):
		cmd := m.moveFocus(1)
		return m, cmd
	case key.Matches(msg, keys.Prev):
		cmd := m.moveFocus(-1)
		return m, cmd
	case key.Matches(msg, keys.ChoiceL, keys.ChoiceR):
		if f := m.focusedField(); f != nil && f.IsForeignKey() {
			step := 1
			if key.Matches(msg, keys.ChoiceL) {
				step = -1
			}
			m.inputs[m.focus].SetValue(cycleChoice(*f, m.inputs[m.focus].Value(), step))
			return m, nil
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// moveFocus cycles the focused input.
func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m Model) focusedField() *form.Field {
	if m.session == nil || m.focus >= len(m.session.Fields()) {
		return nil
	}
	return &m.session.Fields()[m.focus]
}

func (m Model) input() map[string]string {
	fields := m.session.Fields()
	input := make(map[string]string, len(fields))
	for i, f := range fields {
		input[f.Name] = m.inputs[i].Value()
	}
	return input
}

// selectedKey returns the primary key of the highlighted row.
func (m Model) selectedKey() (string, bool) {
	i := m.grid.Cursor()
	if i < 0 || i >= len(m.rows) {
		return "", false
	}
	t, err := m.acc.Catalog().Table(m.table)
	if err != nil {
		return "", false
	}
	pk, err := t.PrimaryKey()
	if err != nil {
		return "", false
	}
	v, ok := m.rows[i].Get(pk.Name)
	if !ok || v == nil {
		return "", false
	}
	return form.FormatValue(v), true
}

func (m *Model) setGrid() {
	var names []string
	if t, err := m.acc.Catalog().Table(m.table); err == nil {
		names = t.ColumnNames()
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		w := len(name)
		if w < 8 {
			w = 8
		}
		if w > 24 {
			w = 24
		}
		cols[i] = table.Column{Title: name, Width: w}
	}

	rows := make([]table.Row, len(m.rows))
	for i, rec := range m.rows {
		row := make(table.Row, len(names))
		for j, name := range names {
			v, _ := rec.Get(name)
			row[j] = form.FormatValue(v)
		}
		rows[i] = row
	}

	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	if m.grid.Cursor() >= len(rows) {
		m.grid.SetCursor(0)
	}
}

func newInputs(fields []form.Field, values map[string]string) []textinput.Model {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 0 // prefilled values must round-trip whole
		ti.Width = 40
		ti.Cursor.SetMode(cursor.CursorStatic)
		if f.IsForeignKey() {
			ti.Placeholder = "←/→ to choose from " + f.Reference.Table
		}
		ti.SetValue(values[f.Name])
		inputs[i] = ti
	}
	return inputs
}

// cycleChoice moves from the current encoded choice to its neighbour.
// Nullable references include an empty choice.
func cycleChoice(f form.Field, current string, step int) string {
	options := make([]string, 0, len(f.Reference.Choices)+1)
	if f.Nullable {
		options = append(options, "")
	}
	for _, c := range f.Reference.Choices {
		options = append(options, c.String())
	}
	if len(options) == 0 {
		return current
	}

	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step > 0 {
			return options[0]
		}
		return options[len(options)-1]
	}
	return options[(idx+step+len(options))%len(options)]
}
