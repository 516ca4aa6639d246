// Package tui provides the Bubble Tea simulator that draws popup stacks on
// a virtual desktop.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toaststack/internal/adapter/input"
	"github.com/jmylchreest/toaststack/internal/adapter/output"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/theme"
)

const (
	// AutoHideAfter is the hide timer of popups created while auto-hide
	// is on.
	AutoHideAfter = 5 * time.Second

	// windowStep is how far the window moves per key press, in pixels.
	windowStep = 40

	headerRows    = 1
	footerRows    = 1
	maxLegendRows = 6
)

var sampleText = map[string]string{
	model.IconInformation: "Something happened that you might want to know about.",
	model.IconWarning:     "Disk usage is above 90%. Consider cleaning up old files.",
	model.IconError:       "The build failed. Check the logs for details.",
	model.IconConfirm:     "Your changes were saved.",
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the Bubble Tea model of the simulator.
type Model struct {
	sim  *Simulator
	keys KeyMap
	help help.Model

	width  int
	height int
	ready  bool

	// Options for the next popup
	position model.Position
	screen   int
	dark     bool
	attach   bool
	autoHide bool
	counter  int

	selected string // popup id

	statusMsg string
	statusErr bool

	frameInterval time.Duration
	lastTick      time.Time
}

// New creates the simulator model.
func New(sim *Simulator) Model {
	cfg := sim.Manager().Config()

	fps := cfg.Animation.FrameRate
	if fps <= 0 {
		fps = 30
	}

	return Model{
		sim:           sim,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		position:      cfg.DefaultPositionValue(),
		screen:        max(cfg.Defaults.Screen, 0),
		dark:          cfg.Defaults.Dark,
		autoHide:      cfg.Defaults.HideAfter > 0,
		frameInterval: time.Second / time.Duration(fps),
	}
}

type tickMsg time.Time

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	method clipboardMethod
	err    error
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the frame ticker.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tickMsg:
		t := time.Time(msg)
		delta := m.frameInterval
		if !m.lastTick.IsZero() {
			delta = t.Sub(m.lastTick)
		}
		m.lastTick = t
		m.sim.Tick(delta)
		return m, m.tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied layout to clipboard ("+string(msg.method)+")", false)
	}

	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mgr := m.sim.Manager()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.ShowInfo):
		return m.show(model.IconInformation, "Information")
	case key.Matches(msg, m.keys.ShowWarning):
		return m.show(model.IconWarning, "Warning")
	case key.Matches(msg, m.keys.ShowError):
		return m.show(model.IconError, "Error")
	case key.Matches(msg, m.keys.ShowConfirm):
		return m.show(model.IconConfirm, "Confirm")

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Click):
		p := m.selectedPopup()
		if p == nil {
			return m, nil
		}
		_, h := p.Size()
		if err := mgr.Click(p, 0, h/2); err != nil {
			return m, status("Click failed: "+err.Error(), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Close):
		p := m.selectedPopup()
		if p == nil {
			return m, nil
		}
		m.moveSelection(1)
		if err := mgr.Hide(p); err != nil {
			return m, status("Close failed: "+err.Error(), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseAll):
		mgr.HideAll()
		m.selected = ""
		return m, status("Closed all popups", false)

	case key.Matches(msg, m.keys.Shake):
		p := m.selectedPopup()
		if p == nil {
			return m, nil
		}
		shake := mgr.Config().DefaultShake()
		if shake == nil {
			shake = &model.ShakeRequest{Duration: config.DefaultShakeDuration, Amplitude: config.DefaultShakeAmplitude}
		}
		if err := mgr.Shake(p, shake.Duration, shake.Amplitude); err != nil {
			return m, status("Shake failed: "+err.Error(), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPosition):
		m.position = cyclePosition(m.position, 1)
		return m, nil
	case key.Matches(msg, m.keys.PrevPosition):
		m.position = cyclePosition(m.position, -1)
		return m, nil

	case key.Matches(msg, m.keys.NextScreen):
		m.screen = (m.screen + 1) % len(m.sim.Screens())
		return m, nil

	case key.Matches(msg, m.keys.ToggleDark):
		m.dark = !m.dark
		return m, nil
	case key.Matches(msg, m.keys.ToggleAttach):
		m.attach = !m.attach
		return m, nil
	case key.Matches(msg, m.keys.ToggleAutoHide):
		m.autoHide = !m.autoHide
		return m, nil

	case key.Matches(msg, m.keys.WindowLeft):
		m.sim.MoveWindow(-windowStep, 0)
		return m, nil
	case key.Matches(msg, m.keys.WindowRight):
		m.sim.MoveWindow(windowStep, 0)
		return m, nil
	case key.Matches(msg, m.keys.WindowUp):
		m.sim.MoveWindow(0, -windowStep)
		return m, nil
	case key.Matches(msg, m.keys.WindowDown):
		m.sim.MoveWindow(0, windowStep)
		return m, nil
	case key.Matches(msg, m.keys.WindowIconify):
		m.sim.ToggleIconified()
		return m, nil
	case key.Matches(msg, m.keys.RotateScreen):
		screen := m.sim.RotateScreen(m.sim.WindowScreen().Number)
		m.resize()
		b := screen.Bounds()
		return m, status(fmt.Sprintf("Screen %d is now %dx%d", screen.Number, b.Width, b.Height), false)

	case key.Matches(msg, m.keys.CopyJSON):
		return m, m.copyLayout(output.FormatJSON)
	case key.Matches(msg, m.keys.CopyYAML):
		return m, m.copyLayout(output.FormatYAML)
	}

	return m, nil
}

// show creates a popup with the current options.
func (m Model) show(icon, kind string) (tea.Model, tea.Cmd) {
	m.counter++
	screen := m.screen
	hideAfter := config.Duration(0)
	if m.autoHide {
		hideAfter = config.Duration(AutoHideAfter)
	}

	p, err := m.sim.Show(input.Request{
		Title:     fmt.Sprintf("%s %d", kind, m.counter),
		Text:      sampleText[icon],
		Icon:      icon,
		Position:  m.position.String(),
		Screen:    &screen,
		HideAfter: &hideAfter,
		Dark:      m.dark,
	}, m.attach)
	if err != nil {
		return m, status("Show failed: "+err.Error(), true)
	}
	m.selected = p.ID
	return m, nil
}

func (m Model) copyLayout(format output.FormatType) tea.Cmd {
	text, err := formatLayout(m.sim.Manager().Snapshot(), format)
	if err != nil {
		return status("Export failed: "+err.Error(), true)
	}
	cfg := m.sim.Manager().Config()
	return func() tea.Msg {
		method, err := copyText(text, cfg, clipboardMethodFor(cfg), os.Stderr)
		return copyResultMsg{method: method, err: err}
	}
}

func (m Model) selectedPopup() *stack.Popup {
	for _, p := range m.sim.Manager().Popups() {
		if p.ID == m.selected {
			return p
		}
	}
	return nil
}

// moveSelection selects the popup dir steps away from the current one,
// falling back to the first popup.
func (m *Model) moveSelection(dir int) {
	popups := m.sim.Manager().Popups()
	if len(popups) == 0 {
		m.selected = ""
		return
	}
	for i, p := range popups {
		if p.ID == m.selected {
			next := (i + dir + len(popups)) % len(popups)
			m.selected = popups[next].ID
			return
		}
	}
	m.selected = popups[0].ID
}

func cyclePosition(p model.Position, dir int) model.Position {
	positions := model.ValidPositions()
	for i, candidate := range positions {
		if candidate == p {
			return positions[(i+dir+len(positions))%len(positions)]
		}
	}
	return positions[0]
}

// desktopRows is the number of terminal rows the virtual desktop gets.
func (m Model) desktopRows() int {
	return max(m.height-headerRows-footerRows-maxLegendRows-1, 3)
}

// resize fits the whole desktop into the terminal.
func (m Model) resize() {
	d := m.sim.Desktop()
	cols := max(m.width, 1)
	m.sim.Canvas().SetScale(ceilDiv(d.Width, cols), ceilDiv(d.Height, m.desktopRows()))
}

// View renders the simulator.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(m.viewHeader())
	sb.WriteString("\n")
	if m.help.ShowAll {
		sb.WriteString(m.help.View(m.keys))
		return sb.String()
	}
	sb.WriteString(m.viewDesktop())
	sb.WriteString("\n")
	sb.WriteString(m.viewLegend())
	sb.WriteString("\n")
	sb.WriteString(m.viewFooter())
	return sb.String()
}

func (m Model) viewHeader() string {
	opts := []string{m.position.String(), fmt.Sprintf("screen %d", m.screen)}
	if m.dark {
		opts = append(opts, "dark")
	}
	if m.attach {
		opts = append(opts, fmt.Sprintf("attached to %s on screen %d", WindowName, m.sim.WindowScreen().Number))
	}
	if m.autoHide {
		opts = append(opts, "hide after "+AutoHideAfter.String())
	}
	if n := m.sim.Pending(); n > 0 {
		opts = append(opts, fmt.Sprintf("%d scripted", n))
	}
	return titleStyle.Render("toaststack") + " " + dimStyle.Render(strings.Join(opts, " · "))
}

func (m Model) viewDesktop() string {
	rows := m.desktopRows()
	cols := max(m.width, 1)
	grid := newGrid(cols, rows)

	cellW, cellH := m.sim.Canvas().Scale()
	d := m.sim.Desktop()
	toCells := func(r model.Rect) cellRect {
		col0, row0 := floorDiv(r.X-d.X, cellW), floorDiv(r.Y-d.Y, cellH)
		col1 := floorDiv(r.X+r.Width-d.X-1, cellW)
		row1 := floorDiv(r.Y+r.Height-d.Y-1, cellH)
		return cellRect{col0, row0, col1, row1}
	}

	for _, s := range m.sim.Screens() {
		grid.box(toCells(s.Bounds()), singleBox, s.ID())
	}
	if !m.sim.WindowIconified() {
		w := m.sim.Window()
		grid.box(toCells(w.Bounds()), doubleBox, w.ID())
	}

	originCol, originRow := floorDiv(d.X, cellW), floorDiv(d.Y, cellH)
	for _, f := range m.sim.Canvas().Frames() {
		for i, line := range f.Lines {
			runes := []rune(line)
			if i == 0 && f.ID == m.selected && len(runes) > 0 {
				runes[0] = '◆'
			}
			grid.text(f.Col-originCol, f.Row-originRow+i, runes)
		}
	}
	return grid.String()
}

func (m Model) viewLegend() string {
	popups := m.sim.Manager().Popups()
	lines := make([]string, 0, maxLegendRows+1)
	lines = append(lines, dimStyle.Render(fmt.Sprintf("%d visible", len(popups))))

	for i, p := range popups {
		if i == maxLegendRows {
			break
		}
		marker := "  "
		style := lipgloss.NewStyle()
		if p.ID == m.selected {
			marker = "▸ "
			style = selectedStyle
		}
		x, y := p.Location()
		w, _ := p.Size()
		line := fmt.Sprintf("%s%s %s #%d (%d,%d) %d%%",
			marker,
			popupTitle(p, m.sim.Canvas()),
			p.Key(),
			p.Index(),
			x, y,
			percent(p.Progress(), w),
		)
		line += " " + dimStyle.Render("shown "+humanize.Time(p.ShownAt()))
		lines = append(lines, style.Render(line))
	}
	for len(lines) < maxLegendRows+1 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewFooter() string {
	if m.statusMsg != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		return style.Render(m.statusMsg)
	}
	if events := m.sim.Events(1); len(events) > 0 {
		e := events[0]
		return dimStyle.Render(e.Text+" ("+humanize.Time(e.At)+") ") + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// popupTitle renders the title in the popup's theme colors.
func popupTitle(p *stack.Popup, canvas *Canvas) string {
	title := p.Notification.Title
	sh, ok := canvas.Shell(p.ID)
	if !ok || sh.Content().Theme == nil {
		return title
	}
	th := sh.Content().Theme
	return themeStyle(th).Render(" " + title + " ")
}

func themeStyle(th *theme.Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.TitleFG.Hex())).
		Background(lipgloss.Color(th.PanelBG.Hex()))
}

func percent(v, total int) int {
	if total <= 0 {
		return 0
	}
	return v * 100 / total
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// RunOptions configures the simulator.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Config file to watch for changes (empty = no watching)
	Logger     *slog.Logger
	Themes     *theme.Loader
	Adapter    input.InputAdapter // Script replayed on start (nil = none)
}

// Run starts the simulator with the given options.
func Run(opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	script, err := loadScript(ctx, opts.Adapter)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}

	sim, err := NewSimulator(opts.Config, Options{
		Logger: logger,
		Themes: opts.Themes,
		Script: script,
	})
	if err != nil {
		return err
	}
	defer sim.Close()

	p := tea.NewProgram(New(sim), tea.WithAltScreen())

	// Start config watcher if a path was provided
	if opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create config watcher: %v\n", err)
		} else {
			watcher.SetChangeCallback(func(cfg *config.Config) {
				if err := sim.Manager().UpdateConfig(cfg); err != nil {
					p.Send(statusMsg{text: "Config rejected: " + err.Error(), isErr: true})
					return
				}
				p.Send(statusMsg{text: "Config reloaded", isErr: false})
			})
			if err := watcher.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to start config watcher: %v\n", err)
			}
			defer func() { _ = watcher.Stop() }()
		}
	}

	if opts.Themes != nil {
		themeCtx, stopThemes := context.WithCancel(context.Background())
		opts.Themes.SetChangeCallback(func(th *theme.Theme) {
			p.Send(statusMsg{text: "Theme " + th.Name + " reloaded", isErr: false})
		})
		opts.Themes.StartHotReload(themeCtx)
		defer func() {
			opts.Themes.StopHotReload()
			stopThemes()
		}()
	}

	_, err = p.Run()
	return err
}
