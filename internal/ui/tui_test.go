package ui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/typeahead/internal/sequencer"
	"github.com/Aman-CERP/typeahead/internal/typeahead"
)

func newTestModel(t *testing.T, ctrl *fakeController) *searchModel {
	t.Helper()
	box := newMailbox()
	t.Cleanup(box.close)
	return newSearchModel(ctrl, box, NewConfig(&bytes.Buffer{}, WithNoColor(true)))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func successWith(token uint64, items ...string) stateMsg {
	return stateMsg(typeahead.State{
		Query:       "re",
		Phase:       typeahead.PhaseSuccess,
		Items:       items,
		LastLatency: 20 * time.Millisecond,
		HasLatency:  true,
		Token:       sequencer.Token(token),
	})
}

func TestNewTUI_ReturnsErrorForNonTTY(t *testing.T) {
	// Given: a non-TTY output
	cfg := NewConfig(&bytes.Buffer{})

	// When: creating a TUI
	tui, err := NewTUI(&fakeController{}, cfg)

	// Then: it is refused
	assert.Error(t, err)
	assert.Nil(t, tui)
}

func TestMailbox_KeepsLatestState(t *testing.T) {
	// Given: a mailbox
	box := newMailbox()
	defer box.close()

	// When: two states are put before anyone reads
	box.put(typeahead.State{Query: "r"})
	box.put(typeahead.State{Query: "re"})

	// Then: only the latest is delivered
	msg := box.wait()()
	require.IsType(t, stateMsg{}, msg)
	assert.Equal(t, "re", msg.(stateMsg).Query)
}

func TestMailbox_CloseReleasesWaiter(t *testing.T) {
	// Given: a waiter on an empty mailbox
	box := newMailbox()
	done := make(chan tea.Msg, 1)
	go func() { done <- box.wait()() }()

	// When: the mailbox is closed (twice)
	box.close()
	box.close()

	// Then: the waiter returns nil
	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
}

func TestSearchModel_TypingSetsQuery(t *testing.T) {
	// Given: a model
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)

	// When: typing two characters
	m.Update(runes("r"))
	m.Update(runes("e"))

	// Then: each edit is forwarded with the full value
	assert.Equal(t, []string{"r", "re"}, ctrl.queries)
}

func TestSearchModel_EscClears(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m.Update(runes("re"))

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, 1, ctrl.clears)
	assert.Empty(t, m.input.Value())
}

func TestSearchModel_CursorAndSelect(t *testing.T) {
	// Given: a model showing three suggestions
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m.Update(successWith(1, "react", "redux", "render"))

	// When: moving down twice, past the end, then up once and selecting
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	// Then: the highlighted suggestion is selected
	assert.Equal(t, []string{"redux"}, ctrl.selected)
	assert.Equal(t, "redux", m.input.Value())
}

func TestSearchModel_EnterWithoutSuggestionsSelectsInput(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m.Update(runes("zzz"))

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"zzz"}, ctrl.selected)
}

func TestSearchModel_TabWithoutSuggestionsDoesNothing(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	m.Update(runes("zzz"))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Empty(t, ctrl.selected)
}

func TestSearchModel_CtrlRRetries(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, 1, ctrl.retries)
}

func TestSearchModel_CtrlCQuits(t *testing.T) {
	m := newTestModel(t, &fakeController{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestSearchModel_NewSuccessResetsCursorAndRecordsLatency(t *testing.T) {
	// Given: a cursor moved down in one result set
	m := newTestModel(t, &fakeController{})
	m.Update(successWith(1, "react", "redux"))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.cursor)

	// When: a newer success arrives
	m.Update(successWith(2, "react", "redux"))

	// Then: the cursor returns to the top and both latencies are kept
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 2, m.latencies.Count())
}

func TestSearchModel_StateMsgWaitsForNext(t *testing.T) {
	m := newTestModel(t, &fakeController{})

	_, cmd := m.Update(successWith(1, "react"))

	assert.NotNil(t, cmd)
}

func TestSearchModel_View(t *testing.T) {
	// Given: a model with suggestions
	m := newTestModel(t, &fakeController{})
	m.Update(successWith(1, "react", "redux"))

	// When: rendering
	view := m.View()

	// Then: the header, status, items and help are shown
	assert.Contains(t, view, "typeahead")
	assert.Contains(t, view, "status: ok (2 items, 20ms)")
	assert.Contains(t, view, "#1 react")
	assert.Contains(t, view, "#2 redux")
	assert.Contains(t, view, "ctrl+r retry")
}

func TestSearchModel_ViewError(t *testing.T) {
	m := newTestModel(t, &fakeController{})
	m.Update(stateMsg(typeahead.State{Query: "re", Phase: typeahead.PhaseError, ErrorMessage: "backend down"}))

	view := m.View()

	assert.Contains(t, view, "status: error (backend down)")
	assert.Contains(t, view, HintError)
}

func TestSearchModel_WindowResize(t *testing.T) {
	m := newTestModel(t, &fakeController{})

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
}
