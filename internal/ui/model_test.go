package ui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wallet_vote/internal/api"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage/noop"
	"wallet_vote/internal/types"
	"wallet_vote/internal/vote"
	"wallet_vote/internal/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu       sync.Mutex
	state    vote.State
	selected []string
	votes    [][2]string
	updates  chan vote.Update
}

func newFakeController(st vote.State) *fakeController {
	return &fakeController{state: st, updates: make(chan vote.Update, 8)}
}

func (f *fakeController) Snapshot() vote.State { return f.state }

func (f *fakeController) SelectCategory(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, slug)
}

func (f *fakeController) Vote(ctx context.Context, category, candidate string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, [2]string{category, candidate})
	return nil
}

func (f *fakeController) Subscribe() (<-chan vote.Update, func()) {
	return f.updates, func() {}
}

type fakeWallet struct {
	active       int
	connects     []int
	nexts        int
	disconnects  int
	connectError error
}

func (w *fakeWallet) Connect(i int) error {
	w.connects = append(w.connects, i)
	if w.connectError != nil {
		return w.connectError
	}
	w.active = i
	return nil
}

func (w *fakeWallet) NextAccount() error { w.nexts++; return nil }
func (w *fakeWallet) Disconnect()        { w.disconnects++; w.active = -1 }
func (w *fakeWallet) ActiveIndex() int   { return w.active }

func readyState() vote.State {
	return vote.State{
		CatalogLoaded: true,
		Categories:    []api.Category{{Slug: "music", Name: "Music"}, {Slug: "art", Name: "Art"}},
		Candidates: []api.Candidate{
			{Slug: "dj1", Name: "DJ One", Description: "Plays records", Extra: "https://www.dj.one/about"},
			{Slug: "dj2", Name: "DJ Two"},
		},
		ActiveCategory: "music",
		Votes:          vote.VoteMap{},
		Phase:          vote.PhaseReady,
		Session:        wallet.Session{Connected: true, Address: "0x1"},
		Submitting:     map[string]bool{},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, st vote.State) (Model, *fakeController, *fakeWallet) {
	t.Helper()
	ctrl := newFakeController(st)
	w := &fakeWallet{active: -1}
	_, prefs := noop.NewStore()
	m := New(context.Background(), ctrl, w, prefs, types.ThemeDark, logger.NewNopLogger())
	return m, ctrl, w
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModel_ViewReadyCategory(t *testing.T) {
	m, _, _ := newTestModel(t, readyState())

	view := m.View()
	assert.Contains(t, view, "Music")
	assert.Contains(t, view, "not voted")
	assert.Contains(t, view, "DJ One")
	assert.Contains(t, view, "DJ Two")
	assert.Contains(t, view, "Plays records")
	assert.Contains(t, view, "dj.one")
	assert.NotContains(t, view, "www.dj.one")
	assert.Contains(t, view, "[Vote]")
	assert.Contains(t, view, "Progress: 0 / 2")
	assert.Contains(t, view, "Wallet: 0x1")
}

func TestModel_ViewVotedCategoryHidesOthers(t *testing.T) {
	st := readyState()
	st.Votes = vote.VoteMap{"music": "dj2"}
	m, ctrl, _ := newTestModel(t, st)

	view := m.View()
	assert.Contains(t, view, "DJ Two")
	assert.NotContains(t, view, "DJ One")
	assert.Contains(t, view, "[Voted]")
	assert.Contains(t, view, "Your vote")
	assert.Contains(t, view, "Progress: 1 / 2")

	_, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Empty(t, ctrl.votes)
}

func TestModel_EmptyStates(t *testing.T) {
	m, _, _ := newTestModel(t, vote.State{})
	assert.Contains(t, m.View(), "Loading categories")
	assert.Contains(t, m.View(), "Wallet: disconnected")

	m, _, _ = newTestModel(t, vote.State{CatalogLoaded: true})
	assert.Contains(t, m.View(), "No data")
}

func TestModel_VoteSendsFocusedCandidate(t *testing.T) {
	m, ctrl, _ := newTestModel(t, readyState())

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")
	_, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, voteDoneMsg{}, msg)
	assert.Equal(t, [][2]string{{"music", "dj2"}}, ctrl.votes)
}

func TestModel_SwitchCategory(t *testing.T) {
	m, ctrl, _ := newTestModel(t, readyState())

	m, _ = press(t, m, "tab")
	assert.Equal(t, "art", m.state.ActiveCategory)
	m, _ = press(t, m, "tab")
	assert.Equal(t, "music", m.state.ActiveCategory)
	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, "art", m.state.ActiveCategory)

	assert.Equal(t, []string{"art", "music", "art"}, ctrl.selected)
}

func TestModel_AppliesUpdatesAndNotices(t *testing.T) {
	m, ctrl, _ := newTestModel(t, readyState())
	ctrl.updates <- vote.Update{
		State:  readyState(),
		Notice: &vote.Notice{Kind: vote.NoticeError, Message: "Could not submit vote"},
	}

	msg := m.Init()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Could not submit vote")

	st := readyState()
	st.Votes = vote.VoteMap{"music": "dj1"}
	next, _ = m.Update(updateMsg(vote.Update{State: st}))
	m = next.(Model)
	assert.Contains(t, m.View(), "Could not submit vote", "notice stays until replaced")
	assert.Contains(t, m.View(), "Your vote")

	close(ctrl.updates)
	_, cmd = m.Update(m.Init()())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WalletKeys(t *testing.T) {
	m, _, w := newTestModel(t, vote.State{})

	_, cmd := press(t, m, "c")
	require.NotNil(t, cmd)
	assert.Equal(t, walletDoneMsg{}, cmd())
	assert.Equal(t, []int{0}, w.connects)

	_, cmd = press(t, m, "c")
	cmd()
	assert.Equal(t, []int{0}, w.connects, "already connected")

	_, cmd = press(t, m, "n")
	cmd()
	assert.Equal(t, 1, w.nexts)

	_, cmd = press(t, m, "d")
	cmd()
	assert.Equal(t, 1, w.disconnects)

	w.connectError = errors.New("boom")
	_, cmd = press(t, m, "c")
	next, _ := m.Update(cmd())
	assert.Contains(t, next.(Model).View(), "boom")
}

func TestModel_ToggleThemePersists(t *testing.T) {
	m, _, _ := newTestModel(t, readyState())

	m, cmd := press(t, m, "t")
	assert.Equal(t, types.ThemeLight, m.Theme())
	require.NotNil(t, cmd)
	assert.Equal(t, themeSavedMsg{}, cmd())

	assert.Equal(t, types.ThemeLight, LoadTheme(context.Background(), m.prefs, types.ThemeDark, logger.NewNopLogger()))
}

func TestLoadTheme(t *testing.T) {
	ctx := context.Background()
	_, prefs := noop.NewStore()
	log := logger.NewNopLogger()

	assert.Equal(t, types.ThemeDark, LoadTheme(ctx, prefs, types.ThemeDark, log))

	require.NoError(t, prefs.SetState(ctx, types.ThemeStateKey, "dark"))
	assert.Equal(t, types.ThemeDark, LoadTheme(ctx, prefs, types.ThemeLight, log))

	require.NoError(t, prefs.SetState(ctx, types.ThemeStateKey, "solarized"))
	assert.Equal(t, types.ThemeLight, LoadTheme(ctx, prefs, types.ThemeDark, log))
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, readyState())
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
