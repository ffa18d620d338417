package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi-messenger/debug"
	"midi-messenger/messenger"
	"midi-messenger/midi"
	"midi-messenger/theme"
	"midi-messenger/widgets"
)

const (
	buttonWidth  = 24 // inner width, borders add 2
	leftWidth    = buttonWidth + 2
	gutter       = 2
	minLogHeight = 12
	flashFor     = 150 * time.Millisecond
)

// layoutBounds holds cached layout info for mouse hit testing
type layoutBounds struct {
	buttonTops  []int // first row of each button
	buttonH     int
	sliderRow   int
	sliderWidth int
}

type Model struct {
	Manager   *messenger.Manager
	DeviceMgr *midi.DeviceManager // nil when inputs aren't auto-connected
	Theme     *theme.Theme

	width, height int
	bounds        *layoutBounds
	inputs        map[string]bool
	status        string
	showHelp      bool
	quitting      bool

	lastPad   int
	lastPadAt time.Time
}

type UpdateMsg struct{}

type flashDoneMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(manager *messenger.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		width:     100,
		height:    24,
		bounds:    &layoutBounds{},
		inputs:    make(map[string]bool),
		lastPad:   -1,
	}
}

func ListenForUpdates(manager *messenger.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m, m.handleClick(msg.X, msg.Y)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case flashDoneMsg:
		// redraw only, View drops the highlight once flashFor has passed

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.inputs[event.ID] = true
			m.Manager.Attach(event.Input)
			m.status = "connected " + event.ID
		case midi.DeviceDisconnected:
			delete(m.inputs, event.ID)
			m.status = "disconnected " + event.ID
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m, m.triggerPad(int(key[0] - '1'))

	case "h", "left":
		m.Manager.SetVolume(m.Manager.Volume() - 1)
	case "l", "right":
		m.Manager.SetVolume(m.Manager.Volume() + 1)
	case "H", "shift+left":
		m.Manager.SetVolume(m.Manager.Volume() - 10)
	case "L", "shift+right":
		m.Manager.SetVolume(m.Manager.Volume() + 10)

	case "[":
		m.Manager.ProgramChange(-1)
	case "]":
		m.Manager.ProgramChange(1)

	case ",":
		m.Manager.PitchWheel(-1)
	case ".":
		m.Manager.PitchWheel(1)
	case "/":
		m.Manager.PitchWheel(0)

	case "a":
		m.Manager.AllNotesOff()
	case "s":
		m.Manager.AllSoundOff()

	case "c":
		m.Manager.ClearLog()
		m.status = ""

	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// triggerPad plays a pad and schedules a redraw to end its highlight
func (m *Model) triggerPad(i int) tea.Cmd {
	if err := m.Manager.TriggerPad(i); err != nil {
		m.status = err.Error()
		return nil
	}
	m.lastPad = i
	m.lastPadAt = time.Now()
	return tea.Tick(flashFor, func(time.Time) tea.Msg { return flashDoneMsg{} })
}

func (m *Model) handleClick(x, y int) tea.Cmd {
	b := m.bounds
	if x < 0 || x >= leftWidth {
		return nil
	}
	for i, top := range b.buttonTops {
		if y >= top && y < top+b.buttonH {
			debug.Log("tui", "click pad %d at %d,%d", i, x, y)
			return m.triggerPad(i)
		}
	}
	if y == b.sliderRow && x < b.sliderWidth {
		m.Manager.SetVolume(widgets.SliderValueAt(x, 127, b.sliderWidth))
	}
	return nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	buttonStyle := lipgloss.NewStyle().Foreground(th.FG()).BorderForeground(th.Muted())
	pressedStyle := lipgloss.NewStyle().Foreground(th.Active()).BorderForeground(th.Active()).Bold(true)
	sliderStyle := lipgloss.NewStyle().Foreground(th.Accent())
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Muted()).
		Foreground(th.FG()).
		Padding(0, 1)

	header := headerStyle.Render(m.headerText())

	// Left column: pads then the volume slider
	cfg := m.Manager.Config()
	var left []string
	m.bounds.buttonTops = m.bounds.buttonTops[:0]
	row := 3 // "\n" + header + "\n\n"
	for i, pad := range m.Manager.Pads() {
		style := buttonStyle
		if i == m.lastPad && time.Since(m.lastPadAt) < flashFor {
			style = pressedStyle
		}
		btn := widgets.RenderButton(pad.Label(), buttonWidth, style)
		m.bounds.buttonTops = append(m.bounds.buttonTops, row)
		m.bounds.buttonH = lipgloss.Height(btn)
		row += m.bounds.buttonH
		left = append(left, btn)
	}

	sym := th.Symbols
	volume := m.Manager.Volume()
	track := widgets.SliderCells(volume, 127, leftWidth-4, sym.SliderFill, sym.SliderKnob, sym.SliderEmpty)
	slider := widgets.RenderSlider(fmt.Sprintf("Volume (CC%d)", cfg.VolumeCC), track, volume, sliderStyle, fgStyle)
	left = append(left, "", slider)
	m.bounds.sliderRow = row + 2 // blank line, label, track
	m.bounds.sliderWidth = leftWidth - 4

	left = append(left, "", dimStyle.Render(fmt.Sprintf("prog %3d  pitch %5d", m.Manager.Program(), m.Manager.Pitch())))
	leftView := lipgloss.NewStyle().Width(leftWidth).Render(lipgloss.JoinVertical(lipgloss.Left, left...))

	// Right column: the message log
	logHeight := max(lipgloss.Height(leftView)-2, minLogHeight)
	if m.height > 0 {
		logHeight = max(min(logHeight, m.height-8), 3)
	}
	logWidth := max(m.width-leftWidth-gutter-4, 20)
	logView := logStyle.Render(widgets.RenderLog(m.Manager.Tail(logHeight), logWidth, logHeight))

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftView, strings.Repeat(" ", gutter), logView)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")

	if m.showHelp {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(helpSections(len(m.Manager.Pads())))))
	} else {
		out.WriteString(dimStyle.Render("1-9:pads  h/l:volume  [/]:program  ,/.:pitch  a/s:all off  c:clear  ?:help  q:quit"))
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(fgStyle.Render(m.status))
	}

	return out.String()
}

func (m Model) headerText() string {
	id := m.Manager.SessionID()
	if len(id) > 8 {
		id = id[:8]
	}

	out := "off"
	if o := m.Manager.Output(); o != nil && o.Enabled() {
		out = o.PortName()
	}

	ins := make([]string, 0, len(m.inputs))
	for name := range m.inputs {
		ins = append(ins, name)
	}
	sort.Strings(ins)
	in := "none"
	if len(ins) > 0 {
		in = strings.Join(ins, ", ")
	}

	return fmt.Sprintf("midi-messenger  %s  %s  out:%s  in:%s  queued:%d",
		id, midi.Timecode(m.Manager.Elapsed()), out, in, m.Manager.Pending())
}

func helpSections(pads int) []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Pads", Keys: []widgets.KeyBinding{
			{Key: fmt.Sprintf("1-%d", pads), Desc: "note on, note off shortly after"},
			{Key: "click", Desc: "press a pad or set the slider"},
		}},
		{Title: "Controllers", Keys: []widgets.KeyBinding{
			{Key: "h/l", Desc: "volume -/+1"},
			{Key: "H/L", Desc: "volume -/+10"},
			{Key: "[ ]", Desc: "program change"},
			{Key: ", . /", Desc: "pitch wheel down, up, centre"},
			{Key: "a", Desc: "all notes off"},
			{Key: "s", Desc: "all sound off"},
		}},
		{Title: "Log", Keys: []widgets.KeyBinding{
			{Key: "c", Desc: "clear"},
			{Key: "q", Desc: "quit"},
		}},
	}
}
