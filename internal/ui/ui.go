package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chordex/internal/formatter"
	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/search"
	"github.com/desertthunder/chordex/internal/session"
	"github.com/desertthunder/chordex/internal/workflow"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	ResultsView
	DetailView
	LoginView
)

// DetailService is the slice of the backend client the TUI fetches song
// details through.
type DetailService interface {
	GetSongDetail(ctx context.Context, videoID string) (*models.SongDetail, error)
}

// Recorder persists opened songs to local history.
type Recorder interface {
	Create(lookup *models.Lookup) error
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	svc       DetailService
	store     *session.Store
	flow      *workflow.Workflow
	suggester *search.Suggester
	pager     *search.Pager
	history   Recorder

	width  int
	height int

	input       textinput.Model
	suggestions []models.Song
	suggestIdx  int

	results       list.Model
	resultsReady  bool
	searchPending bool

	detail        *models.SongDetail
	loadingDetail bool
	analyzing     bool
	loadingSaved  bool

	emailInput textinput.Model
	passInput  textinput.Model
	loginFocus int
	loggingIn  bool

	spin   spinner.Model
	notice string
	err    error
	help   help.Model
	keys   keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	analyze key.Binding
	save    key.Binding
	load    key.Binding
	login   key.Binding
	logout  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "ctrl+k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "ctrl+j"),
			key.WithHelp("↓", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		analyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analyze"),
		),
		save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "analyze & save"),
		),
		load: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "load saved"),
		),
		login: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "login"),
		),
		logout: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "logout"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.analyze, k.save, k.load},
		{k.login, k.logout, k.quit},
	}
}

type suggestionsMsg search.Suggestions

type searchDoneMsg struct {
	err error
}

type pageLoadedMsg struct {
	fetched bool
	err     error
}

type detailFetchedMsg struct {
	detail *models.SongDetail
	query  string
	err    error
}

type savedCheckedMsg struct {
	available bool
}

type analysisDoneMsg struct {
	result *models.AnalysisResult
	err    error
}

type savedLoadedMsg struct {
	result *models.AnalysisResult
	err    error
}

type loginDoneMsg struct {
	ok bool
}

// Opts contains the dependencies for creating a TUI model.
type Opts struct {
	Service   DetailService
	Store     *session.Store
	Workflow  *workflow.Workflow
	Suggester *search.Suggester
	Pager     *search.Pager
	History   Recorder
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	input := textinput.New()
	input.Placeholder = "search a song or paste a video link"
	input.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		ctx:        ctx,
		view:       HomeView,
		svc:        opts.Service,
		store:      opts.Store,
		flow:       opts.Workflow,
		suggester:  opts.Suggester,
		pager:      opts.Pager,
		history:    opts.History,
		input:      input,
		emailInput: email,
		passInput:  pass,
		spin:       spin,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the suggestion listener and spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSuggestions(), m.spin.Tick, textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultsReady {
			m.results.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		// Errors and notices are one-shot: any keystroke clears them.
		m.err = nil
		m.notice = ""
		switch m.view {
		case HomeView:
			return m.handleHomeKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case LoginView:
			return m.handleLoginKeys(msg)
		}

	case suggestionsMsg:
		// Only the latest-issued request ever reaches this channel; stale
		// responses were already discarded by the suggester.
		m.suggestions = msg.Songs
		if m.suggestIdx >= len(m.suggestions) {
			m.suggestIdx = 0
		}
		return m, m.waitForSuggestions()

	case searchDoneMsg:
		m.searchPending = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.populateResults()
		m.view = ResultsView
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			// Degrade: keep what we have, surface once.
			m.notice = "failed to load more results"
			return m, nil
		}
		if msg.fetched && m.resultsReady {
			m.populateResults()
		}
		return m, nil

	case detailFetchedMsg:
		m.loadingDetail = false
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultsView
			return m, nil
		}
		m.detail = msg.detail
		m.view = DetailView
		m.recordLookup(msg.query)
		return m, m.checkSaved(msg.detail.VideoID)

	case savedCheckedMsg:
		return m, nil

	case analysisDoneMsg:
		m.analyzing = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("analysis failed: %v", msg.err)
			return m, nil
		}
		if m.detail != nil && msg.result != nil {
			m.detail.Merge(*msg.result)
		}
		m.notice = "analysis complete"
		return m, nil

	case savedLoadedMsg:
		m.loadingSaved = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("could not load saved analysis: %v", msg.err)
			return m, nil
		}
		if m.detail != nil && msg.result != nil {
			m.detail.Merge(*msg.result)
		}
		m.notice = "saved analysis loaded"
		return m, nil

	case loginDoneMsg:
		m.loggingIn = false
		if !msg.ok {
			m.notice = "login failed"
			return m, nil
		}
		m.notice = "logged in"
		m.view = HomeView
		// Availability is a function of both song and session; re-derive.
		if m.detail != nil {
			return m, m.checkSaved(m.detail.VideoID)
		}
		return m, nil
	}

	if m.view == ResultsView && m.resultsReady {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		banner := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		return banner + "\n\n" + m.renderCurrentView()
	}
	return m.renderCurrentView()
}

func (m *Model) renderCurrentView() string {
	switch m.view {
	case HomeView:
		return m.renderHome()
	case ResultsView:
		return m.renderResults()
	case DetailView:
		return m.renderDetail()
	case LoginView:
		return m.renderLogin()
	default:
		return ""
	}
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.login):
		m.view = LoginView
		m.emailInput.Focus()
		m.loginFocus = 0
		return m, nil

	case key.Matches(msg, m.keys.logout):
		m.store.Logout()
		m.notice = "logged out"
		if m.detail != nil {
			// Logout revokes saved-analysis visibility immediately.
			return m, m.checkSaved(m.detail.VideoID)
		}
		return m, nil

	case key.Matches(msg, m.keys.down):
		if len(m.suggestions) > 0 {
			m.suggestIdx = (m.suggestIdx + 1) % len(m.suggestions)
		}
		return m, nil

	case key.Matches(msg, m.keys.up):
		if len(m.suggestions) > 0 {
			m.suggestIdx = (m.suggestIdx + len(m.suggestions) - 1) % len(m.suggestions)
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if len(m.suggestions) > 0 && m.suggestIdx < len(m.suggestions) {
			song := m.suggestions[m.suggestIdx]
			return m, m.fetchDetail(song.VideoID, m.input.Value())
		}
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.searchPending = true
		return m, m.runSearch(query)
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		// Every keystroke feeds the debouncer; it decides what hits the network.
		m.suggester.Input(m.ctx, m.input.Value())
	}
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = HomeView
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if m.resultsReady {
			if item, ok := m.results.SelectedItem().(songItem); ok {
				return m, m.fetchDetail(item.song.VideoID, m.pager.Query())
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.resultsReady {
		m.results, cmd = m.results.Update(msg)
		// Infinite scroll: nearing the bottom requests the next page. The
		// pager no-ops while a fetch is pending or when pages are exhausted.
		if m.results.Index() >= len(m.results.Items())-3 {
			return m, tea.Batch(cmd, m.loadMore())
		}
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.view = ResultsView
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.view = ResultsView
		return m, nil

	case key.Matches(msg, m.keys.analyze):
		return m, m.analyze(m.detail.VideoID, false)

	case key.Matches(msg, m.keys.save):
		return m, m.analyze(m.detail.VideoID, true)

	case key.Matches(msg, m.keys.load):
		if m.loadingSaved {
			return m, nil
		}
		m.loadingSaved = true
		return m, m.loadSaved(m.detail.VideoID)

	case key.Matches(msg, m.keys.login):
		m.view = LoginView
		m.emailInput.Focus()
		m.loginFocus = 0
		return m, nil

	case key.Matches(msg, m.keys.logout):
		m.store.Logout()
		m.notice = "logged out"
		return m, m.checkSaved(m.detail.VideoID)
	}

	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = HomeView
		m.emailInput.Blur()
		m.passInput.Blur()
		return m, nil

	case msg.String() == "tab", key.Matches(msg, m.keys.down), key.Matches(msg, m.keys.up):
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passInput.Blur()
		} else {
			m.passInput.Focus()
			m.emailInput.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		return m, m.login(m.emailInput.Value(), m.passInput.Value())
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passInput, cmd = m.passInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) populateResults() {
	songs := m.pager.Items()
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}

	if !m.resultsReady {
		m.results = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.results.SetShowStatusBar(false)
		m.resultsReady = true
	} else {
		idx := m.results.Index()
		m.results.SetItems(items)
		m.results.Select(idx)
	}
	m.results.Title = fmt.Sprintf("Results for '%s'", m.pager.Query())
}

func (m *Model) recordLookup(query string) {
	if m.history == nil || m.detail == nil {
		return
	}
	lookup := models.NewLookup(m.detail.VideoID, m.detail.Title, m.detail.ChannelTitle, query)
	// History is best effort; a failed insert never blocks navigation.
	_ = m.history.Create(lookup)
}

func (m *Model) waitForSuggestions() tea.Cmd {
	return func() tea.Msg {
		return suggestionsMsg(<-m.suggester.Updates())
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		return searchDoneMsg{err: m.pager.Reset(m.ctx, query)}
	}
}

func (m *Model) loadMore() tea.Cmd {
	return func() tea.Msg {
		fetched, err := m.pager.LoadMore(m.ctx)
		return pageLoadedMsg{fetched: fetched, err: err}
	}
}

func (m *Model) fetchDetail(videoID, query string) tea.Cmd {
	m.loadingDetail = true
	m.flow.SetSong(videoID)
	return func() tea.Msg {
		detail, err := m.svc.GetSongDetail(m.ctx, videoID)
		return detailFetchedMsg{detail: detail, query: query, err: err}
	}
}

func (m *Model) checkSaved(videoID string) tea.Cmd {
	token := m.store.Token()
	return func() tea.Msg {
		return savedCheckedMsg{available: m.flow.CheckSaved(m.ctx, videoID, token)}
	}
}

func (m *Model) analyze(videoID string, persist bool) tea.Cmd {
	if m.analyzing {
		// Re-entry is disabled until the in-flight call resolves.
		return nil
	}
	m.analyzing = true
	token := m.store.Token()
	return func() tea.Msg {
		result, err := m.flow.TriggerAnalysis(m.ctx, videoID, persist, token)
		return analysisDoneMsg{result: result, err: err}
	}
}

func (m *Model) loadSaved(videoID string) tea.Cmd {
	token := m.store.Token()
	return func() tea.Msg {
		result, err := m.flow.LoadSaved(m.ctx, videoID, token)
		return savedLoadedMsg{result: result, err: err}
	}
}

func (m *Model) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{ok: m.store.Login(m.ctx, email, password)}
	}
}

func (m *Model) renderHome() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("chordex"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.searchPending {
		b.WriteString(fmt.Sprintf("%s searching...\n", m.spin.View()))
	}

	for i, song := range m.suggestions {
		cursor := "  "
		if i == m.suggestIdx {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, song.Title, styles.help.Render(song.ChannelTitle)))
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	helpKeys := []key.Binding{m.keys.enter, m.keys.login, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))

	return b.String()
}

func (m *Model) renderResults() string {
	if !m.resultsReady {
		return fmt.Sprintf("%s searching...", m.spin.View())
	}

	var footer string
	if m.pager.Loading() {
		footer = fmt.Sprintf("%s loading more...", m.spin.View())
	} else if !m.pager.HasMore() {
		footer = styles.help.Render("end of results")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", m.results.View(), footer, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.loadingDetail || m.detail == nil {
		return fmt.Sprintf("%s loading song...", m.spin.View())
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.detail.Title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Artist: %s\n", m.detail.ChannelTitle))

	if m.detail.BPM != 0 {
		b.WriteString(fmt.Sprintf("BPM: %d  Signature: %s  Key: %s\n", m.detail.BPM, m.detail.Signature, m.detail.Key))
	} else {
		b.WriteString(styles.help.Render("not analyzed yet\n"))
	}

	if len(m.detail.Chords) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.chord.Render(formatter.FormatProgressionLine(m.detail.Chords)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.analyzing {
		b.WriteString(fmt.Sprintf("%s analyzing...\n", m.spin.View()))
	}
	if m.flow.Available() {
		b.WriteString(styles.ok.Render("saved analysis available") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	helpKeys := []key.Binding{m.keys.analyze, m.keys.load, m.keys.back}
	if _, authed := m.store.Current(); authed {
		helpKeys = []key.Binding{m.keys.analyze, m.keys.save, m.keys.load, m.keys.back}
	}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))

	return b.String()
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Login"))
	b.WriteString("\n\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	b.WriteString(m.passInput.View())
	b.WriteString("\n\n")

	if m.loggingIn {
		b.WriteString(fmt.Sprintf("%s logging in...\n", m.spin.View()))
	}
	if m.notice != "" {
		b.WriteString(styles.warn.Render(m.notice) + "\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderStatusLine() string {
	var parts []string

	if sess, ok := m.store.Current(); ok {
		parts = append(parts, styles.ok.Render(fmt.Sprintf("signed in as %s", sess.User.Nickname)))
	} else {
		parts = append(parts, styles.help.Render("not signed in"))
	}

	if m.notice != "" {
		parts = append(parts, styles.warn.Render(m.notice))
	}

	return strings.Join(parts, "  ")
}
