// Package ui is the terminal presentation of the vote workflow. It renders
// controller snapshots and turns key presses into controller and wallet intents.
package ui

import (
	"context"
	"errors"
	"slices"

	"wallet_vote/internal/api"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/types"
	"wallet_vote/internal/vote"

	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the part of vote.Controller the UI drives.
type Controller interface {
	Snapshot() vote.State
	SelectCategory(slug string)
	Vote(ctx context.Context, categorySlug, candidateSlug string) error
	Subscribe() (<-chan vote.Update, func())
}

// WalletControls are the wallet widget actions. wallet.LocalWallet implements them.
type WalletControls interface {
	Connect(index int) error
	NextAccount() error
	Disconnect()
	ActiveIndex() int
}

var _ Controller = (*vote.Controller)(nil)

type (
	updateMsg     vote.Update
	updatesClosed struct{}
	voteDoneMsg   struct{ err error }
	walletDoneMsg struct{ err error }
	themeSavedMsg struct{ err error }
)

// Model is the bubbletea model of the vote screen.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	wallet  WalletControls
	prefs   storage.StateStorage
	log     logger.Logger
	updates <-chan vote.Update
	cancel  func()

	state  vote.State
	notice *vote.Notice
	theme  types.Theme
	styles styles
	cursor int
	width  int
}

var _ tea.Model = Model{}

// New creates the model and subscribes it to ctrl. theme is the initial
// colour scheme, usually from LoadTheme.
func New(ctx context.Context, ctrl Controller, w WalletControls, prefs storage.StateStorage, theme types.Theme, log logger.Logger) Model {
	updates, cancel := ctrl.Subscribe()
	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		wallet:  w,
		prefs:   prefs,
		log:     log,
		updates: updates,
		cancel:  cancel,
		state:   ctrl.Snapshot(),
		theme:   theme,
		styles:  newStyles(theme),
		width:   80,
	}
}

// LoadTheme reads the persisted theme, falling back to def when none is stored.
func LoadTheme(ctx context.Context, prefs storage.StateStorage, def types.Theme, log logger.Logger) types.Theme {
	v, err := prefs.GetState(ctx, types.ThemeStateKey)
	if err != nil {
		if !errors.Is(err, storage.ErrStateNotFound) {
			log.Warn("Failed to read theme preference", "module", "ui", "error", err)
		}
		return def
	}
	return types.ParseTheme(v)
}

// Close cancels the controller subscription.
func (m Model) Close() {
	m.cancel()
}

// Theme returns the active colour scheme.
func (m Model) Theme() types.Theme {
	return m.theme
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func waitForUpdate(ch <-chan vote.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return updatesClosed{}
		}
		return updateMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case updateMsg:
		m.state = msg.State
		if msg.Notice != nil {
			m.notice = msg.Notice
		}
		m.clampCursor()
		return m, waitForUpdate(m.updates)
	case updatesClosed:
		return m, tea.Quit
	case voteDoneMsg:
		if msg.err != nil {
			m.log.Debug("Vote intent ended", "module", "ui", "error", msg.err)
		}
		return m, nil
	case walletDoneMsg:
		if msg.err != nil {
			m.notice = &vote.Notice{Kind: vote.NoticeError, Message: msg.err.Error(), Err: msg.err}
		}
		return m, nil
	case themeSavedMsg:
		if msg.err != nil {
			m.log.Warn("Failed to save theme preference", "module", "ui", "error", msg.err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "right", "l":
		return m.switchCategory(1)
	case "shift+tab", "left", "h":
		return m.switchCategory(-1)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.visibleCandidates())-1 {
			m.cursor++
		}
		return m, nil
	case "enter", " ":
		return m.vote()
	case "c":
		return m, m.walletCmd(func(w WalletControls) error {
			if w.ActiveIndex() >= 0 {
				return nil
			}
			return w.Connect(0)
		})
	case "n":
		return m, m.walletCmd(WalletControls.NextAccount)
	case "d":
		return m, m.walletCmd(func(w WalletControls) error {
			w.Disconnect()
			return nil
		})
	case "t":
		return m.toggleTheme()
	}
	return m, nil
}

func (m Model) switchCategory(delta int) (tea.Model, tea.Cmd) {
	cats := m.state.Categories
	if len(cats) == 0 {
		return m, nil
	}
	i := slices.IndexFunc(cats, func(c api.Category) bool { return c.Slug == m.state.ActiveCategory })
	if i < 0 {
		i = 0
	} else {
		i = (i + delta + len(cats)) % len(cats)
	}
	slug := cats[i].Slug
	m.ctrl.SelectCategory(slug)
	m.state.ActiveCategory = slug
	m.cursor = 0
	return m, nil
}

// visibleCandidates returns the candidates shown for the active category. In a
// voted category only the chosen candidate remains.
func (m Model) visibleCandidates() []api.Candidate {
	all := m.state.CandidatesFor(m.state.ActiveCategory)
	chosen, voted := m.state.VotedFor(m.state.ActiveCategory)
	if !voted {
		return all
	}
	for _, c := range all {
		if c.Slug == chosen {
			return []api.Candidate{c}
		}
	}
	return []api.Candidate{{Slug: chosen, Name: chosen}}
}

func (m *Model) clampCursor() {
	n := len(m.visibleCandidates())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m Model) vote() (tea.Model, tea.Cmd) {
	category := m.state.ActiveCategory
	candidates := m.visibleCandidates()
	if category == "" || len(candidates) == 0 {
		return m, nil
	}
	if _, voted := m.state.VotedFor(category); voted {
		return m, nil
	}
	candidate := candidates[min(m.cursor, len(candidates)-1)].Slug
	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		return voteDoneMsg{err: ctrl.Vote(ctx, category, candidate)}
	}
}

func (m Model) walletCmd(action func(WalletControls) error) tea.Cmd {
	if m.wallet == nil {
		return nil
	}
	w := m.wallet
	return func() tea.Msg {
		return walletDoneMsg{err: action(w)}
	}
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.theme = m.theme.Toggle()
	m.styles = newStyles(m.theme)
	if m.prefs == nil {
		return m, nil
	}
	ctx, prefs, theme := m.ctx, m.prefs, m.theme
	return m, func() tea.Msg {
		return themeSavedMsg{err: prefs.SetState(ctx, types.ThemeStateKey, string(theme))}
	}
}
