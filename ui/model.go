// Package ui is the terminal clock grid.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/philtim/cityclock/cities"
	"github.com/philtim/cityclock/clock"
	"github.com/philtim/cityclock/config"
	"github.com/philtim/cityclock/geonames"
	"github.com/philtim/cityclock/store"
)

// viewState represents the current view state
type viewState int

const (
	viewMain viewState = iota
	viewAdd
	viewDelete
	viewConfirm
)

// Options wires the model to its collaborators.
type Options struct {
	Context context.Context
	Config  *config.Config
	Backend store.Backend
	List    *store.List
	// Bundled answers searches until GeoNames is ready, or always when
	// GeoNames is nil.
	Bundled  *cities.Resolver
	GeoNames *geonames.Database
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Model represents the application state
type Model struct {
	// Core data
	ctx     context.Context
	cfg     *config.Config
	backend store.Backend
	list    *store.List
	bundled *cities.Resolver
	geo     *geonames.Database
	src     clockwork.Clock
	logger  *slog.Logger
	clocks  []*clock.Clock

	// View state
	state    viewState
	viewport viewport.Model
	ready    bool
	err      error
	notice   string
	width    int
	height   int
	quitting bool
	cursor   int

	// Spinner state
	spinnerFrame  int
	geonamesReady bool
	geonamesErr   error

	// Add mode state
	searchInput        textinput.Model
	lastQuery          string
	suggestions        []cities.Option
	selected           int // -1 while no suggestion is highlighted
	justEnteredAddMode bool

	// Delete mode state
	deleteList     []store.Entry
	deleteSelected map[int]bool
	deleteCursor   int

	// Confirm mode state
	confirmMsg    string
	confirmAction func() error
}

// New builds the model and its clocks.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.List == nil {
		opts.List = store.NewList(nil)
	}

	ti := textinput.New()
	ti.Placeholder = "Search city..."
	ti.CharLimit = 50
	ti.Width = 50

	m := Model{
		ctx:            opts.Context,
		cfg:            opts.Config,
		backend:        opts.Backend,
		list:           opts.List,
		bundled:        opts.Bundled,
		geo:            opts.GeoNames,
		src:            opts.Clock,
		logger:         opts.Logger,
		state:          viewMain,
		searchInput:    ti,
		selected:       -1,
		deleteSelected: make(map[int]bool),
		geonamesReady:  opts.GeoNames == nil,
	}
	m.rebuildClocks()
	return m
}

// resolver returns the GeoNames resolver once it is loaded, the bundled
// one until then.
func (m *Model) resolver() *cities.Resolver {
	if m.geo != nil && m.geo.IsReady() {
		if r := m.geo.Resolver(); r != nil {
			return r
		}
	}
	return m.bundled
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.geo != nil {
		cmds = append(cmds, spinnerTickCmd(), checkGeoNamesCmd(m.ctx, m.geo))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			// Reserve space for command bar (1 newline + 1 bar line)
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.YPosition = 0
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		if !m.geonamesReady {
			cmds = append(cmds, spinnerTickCmd())
		}

	case geonamesReadyMsg:
		m.geonamesReady = true
		m.onGeoNamesReady()

	case geonamesErrorMsg:
		// The bundled dataset keeps serving searches.
		m.geonamesReady = true
		m.geonamesErr = msg.err
		m.logger.Error("geonames unavailable, using bundled cities", "error", msg.err)

	case error:
		m.err = msg
		return m, tea.Quit
	}

	if m.state == viewAdd {
		// Skip the key that opened add mode so it doesn't land in the input.
		if !m.justEnteredAddMode {
			m.searchInput, cmd = m.searchInput.Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			m.refreshSuggestions(false)
		} else {
			m.justEnteredAddMode = false
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input based on current view state
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.state {
	case viewMain:
		return m.handleMainKeys(msg)
	case viewAdd:
		return m.handleAddKeys(msg)
	case viewDelete:
		return m.handleDeleteKeys(msg)
	case viewConfirm:
		return m.handleConfirmKeys(msg)
	}
	return nil
}

// handleMainKeys handles keys in main view
func (m *Model) handleMainKeys(msg tea.KeyMsg) tea.Cmd {
	m.notice = ""

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit

	case "a":
		m.state = viewAdd
		m.searchInput.Reset()
		m.justEnteredAddMode = true
		m.refreshSuggestions(true)
		m.searchInput.Focus()
		return textinput.Blink

	case "d":
		entries := m.list.Entries()
		if len(entries) == 0 {
			m.notice = "no cities to delete"
			return nil
		}
		m.state = viewDelete
		m.deleteList = entries
		m.deleteSelected = make(map[int]bool)
		m.deleteCursor = 0

	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}

	case "right", "l":
		if m.cursor < len(m.clocks)-1 {
			m.cursor++
		}

	case "[":
		m.moveSelected(-1)

	case "]":
		m.moveSelected(1)
	}

	return nil
}

// moveSelected shifts the clock under the cursor within the saved list.
func (m *Model) moveSelected(delta int) {
	if m.cursor >= len(m.clocks) {
		return
	}
	clk := m.clocks[m.cursor]
	if clk.Pinned {
		return
	}
	if m.cfg.Display.SortByOffset {
		m.notice = "clocks are sorted by UTC offset"
		return
	}
	prev := m.list.Entries()
	if err := m.list.Move(clk.ID, delta); err != nil {
		m.notice = err.Error()
		return
	}
	if !m.save(prev) {
		return
	}
	m.rebuildClocks()
	for i, c := range m.clocks {
		if c.ID == clk.ID {
			m.cursor = i
		}
	}
}

// handleAddKeys handles keys in add view
func (m *Model) handleAddKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = viewMain
		m.notice = ""
		return nil

	case "up":
		if m.selected > -1 {
			m.selected--
		}

	case "down":
		if m.selected < len(m.suggestions)-1 {
			m.selected++
		}

	case "enter":
		opt, err := m.choose()
		if err != nil {
			m.notice = err.Error()
			return nil
		}
		m.addCity(opt)
	}

	return nil
}

// choose resolves the highlighted suggestion by id, or the typed text when
// nothing is highlighted.
func (m *Model) choose() (cities.Option, error) {
	r := m.resolver()
	if m.selected >= 0 && m.selected < len(m.suggestions) {
		if opt, ok := r.ByID(m.suggestions[m.selected].ID); ok {
			return opt, nil
		}
		return cities.Option{}, cities.ErrNoMatch
	}
	if opt, ok := r.Resolve(m.searchInput.Value()); ok {
		return opt, nil
	}
	return cities.Option{}, cities.ErrNoMatch
}

func (m *Model) addCity(opt cities.Option) {
	entry := store.NewEntry(opt)
	prev := m.list.Entries()
	if err := m.list.Add(entry); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			m.notice = store.ErrDuplicate.Error()
		} else {
			m.notice = err.Error()
		}
		return
	}
	if !m.save(prev) {
		return
	}
	m.logger.Info("clock added", "city", entry.Label, "timezone", entry.Timezone, "city_id", entry.CityID)

	m.rebuildClocks()
	m.state = viewMain
	m.notice = ""
}

// refreshSuggestions recomputes the suggestion list when the query changed.
// An empty query lists the most populous cities.
func (m *Model) refreshSuggestions(force bool) {
	query := strings.TrimSpace(m.searchInput.Value())
	if !force && query == m.lastQuery {
		return
	}
	m.lastQuery = query
	m.selected = -1
	m.notice = ""

	r := m.resolver()
	if r == nil {
		m.suggestions = nil
		return
	}
	if query == "" {
		m.suggestions = r.Popular(m.cfg.Search.Suggestions)
		return
	}
	m.suggestions = r.Search(query, m.cfg.Search.Suggestions, m.cfg.Search.MinPopulation)
}

// handleDeleteKeys handles keys in delete view
func (m *Model) handleDeleteKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = viewMain
		return nil

	case "up":
		if m.deleteCursor > 0 {
			m.deleteCursor--
		}

	case "down":
		if m.deleteCursor < len(m.deleteList)-1 {
			m.deleteCursor++
		}

	case " ":
		m.deleteSelected[m.deleteCursor] = !m.deleteSelected[m.deleteCursor]

	case "enter":
		var ids, labels []string
		for idx, e := range m.deleteList {
			if m.deleteSelected[idx] {
				ids = append(ids, e.ID)
				labels = append(labels, e.Name())
			}
		}
		if len(ids) == 0 {
			m.notice = "no cities selected"
			return nil
		}
		m.notice = ""

		m.state = viewConfirm
		if len(ids) == 1 {
			m.confirmMsg = fmt.Sprintf("Delete '%s'? (y/n)", labels[0])
		} else {
			m.confirmMsg = fmt.Sprintf("Delete %d selected cities? (y/n)", len(ids))
		}
		list, logger := m.list, m.logger
		m.confirmAction = func() error {
			if err := list.Remove(ids...); err != nil {
				return err
			}
			logger.Info("clocks removed", "cities", labels)
			return nil
		}
	}

	return nil
}

// handleConfirmKeys handles keys in confirm view
func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y":
		m.state = viewMain
		prev := m.list.Entries()
		if err := m.confirmAction(); err != nil {
			m.notice = err.Error()
			return nil
		}
		if m.save(prev) {
			m.rebuildClocks()
		}

	case "n", "esc":
		m.state = viewMain
	}

	return nil
}

// onGeoNamesReady refreshes stored snapshots from the larger dataset.
func (m *Model) onGeoNamesReady() {
	r := m.geo.Resolver()
	if r == nil {
		return
	}
	m.logger.Info("geonames ready", "cities", r.Len())
	prev := m.list.Entries()
	if n := m.list.Refresh(r); n > 0 && m.save(prev) {
		m.rebuildClocks()
	}
	if m.state == viewAdd {
		m.refreshSuggestions(true)
	}
}

// save persists the list. On failure the list is put back to prev so memory
// keeps matching disk, and the error is shown.
func (m *Model) save(prev []store.Entry) bool {
	if m.backend == nil {
		return true
	}
	if err := m.backend.Save(m.ctx, m.list.Entries()); err != nil {
		m.logger.Error("failed to save clocks", "error", err)
		m.list.Reset(prev)
		m.err = fmt.Errorf("failed to save clocks: %w", err)
		m.state = viewMain
		return false
	}
	return true
}

// rebuildClocks recreates clocks from the list
func (m *Model) rebuildClocks() {
	var clocks []*clock.Clock
	if m.cfg.Display.ShowUTC {
		clocks = append(clocks, clock.NewUTC(m.src))
	}

	for _, e := range m.list.Entries() {
		clk, err := clock.New(e.Name(), e.Timezone, m.src)
		if err != nil {
			m.logger.Warn("showing clock without time", "city", e.Name(), "error", err)
			clk = clock.NewUnresolved(e.Name(), e.Timezone, m.src)
		}
		clk.ID = e.ID
		clk.Region = e.Region
		clocks = append(clocks, clk)
	}

	if m.cfg.Display.SortByOffset {
		clock.SortByUTCOffset(clocks)
	}
	m.clocks = clocks
	if m.cursor >= len(clocks) {
		m.cursor = max(0, len(clocks)-1)
	}
}
