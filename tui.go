package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	accent = lipgloss.Color("#5EEAD4")
	muted  = lipgloss.Color("#9CA3AF")

	borderColor   = lipgloss.Color("#374151")
	sidebarWidth  = 22
	sidebarBorder = 2 // 1 left + 1 right
	chatBorder    = 2 // 1 left + 1 right

	sidebarBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Width(sidebarWidth)

	chatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	bufferTitleStyle = lipgloss.NewStyle().
				Foreground(accent).
				Bold(true)

	activeBufferStyle = lipgloss.NewStyle().
				Foreground(accent)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Foreground(lipgloss.Color("#D1D5DB"))

	statusStateStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#E5E7EB")).
				Bold(true)

	statusTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(muted).
			Padding(0, 1)
)

const (
	inputBoxHeight  = 3 // 1 line + 2 borders
	statusBarHeight = 1
	maxInputHistory = 100
)

type tickMsg time.Time

// connectedMsg reports that dial succeeded; the registration handshake runs
// from the update loop, not the dial goroutine.
type connectedMsg struct{}

type connectFailedMsg struct {
	err error
}

type model struct {
	width, height int

	input   textinput.Model
	sidebar viewport.Model

	cfg     Config
	conn    *Conn
	sess    *session
	buffers *bufferList
	accum   *accumulator
	send    func(string) error

	inputHistory []string
	historyIndex int // -1 = not browsing
	historyTemp  string

	currentTime time.Time

	commandHandlers map[string]CommandHandler
}

func initialModel(cfg Config) model {
	inp := textinput.New()
	inp.Placeholder = "Type a message..."
	inp.Prompt = "> "
	inp.Focus()

	conn := newConn(cfg.addr(), cfg.SSL, nil)
	sess := newSession(cfg.Nick, cfg.User, cfg.RealName, cfg.Channel, conn.sendRaw)

	buffers := newBufferList()
	buffers.status().appendLine(versionBanner())

	m := model{
		input:        inp,
		sidebar:      viewport.New(sidebarWidth, 20),
		cfg:          cfg,
		conn:         conn,
		sess:         sess,
		buffers:      buffers,
		accum:        &accumulator{},
		send:         conn.sendRaw,
		historyIndex: -1,
		currentTime:  time.Now(),
	}
	m.setupCommandHandlers()
	return m
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func connectCmd(conn *Conn) tea.Cmd {
	return func() tea.Msg {
		if err := conn.dial(); err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{}
	}
}

// waitForNetEvent delivers the next transport event (a chunk of bytes or the
// close notification) into the update loop.
func waitForNetEvent(conn *Conn) tea.Cmd {
	return func() tea.Msg {
		return <-conn.events
	}
}

func (m model) Init() tea.Cmd {
	m.sess.noteConnecting()
	return tea.Batch(tickCmd(), connectCmd(m.conn), waitForNetEvent(m.conn))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tickMsg:
		m.currentTime = time.Time(msg)
		return m, tickCmd()

	case connectedMsg:
		m.appendStatus(fmt.Sprintf("Connected to %s", m.cfg.addr()))
		if err := m.sess.noteConnected(); err != nil {
			m.appendStatus(err.Error())
		}
		return m, nil

	case connectFailedMsg:
		slog.Error("connect failed", "error", msg.err)
		m.sess.noteDisconnected()
		m.appendStatus(msg.err.Error())
		return m, tea.Quit

	case netChunk:
		m.accum.append(msg)
		for _, frame := range m.accum.drainFrames() {
			m.processFrame(frame)
		}
		return m, waitForNetEvent(m.conn)

	case netClosed:
		if msg.err != nil {
			slog.Error("connection lost", "error", msg.err)
		}
		m.sess.noteDisconnected()
		m.appendStatus("Disconnected from server")
		return m, tea.Quit

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// processFrame runs one complete wire line through the parser, the
// registration machine, and the router. A frame the parser rejects still
// lands in the status buffer so nothing from the server disappears.
func (m *model) processFrame(frame string) {
	line, err := parseLine(frame)
	if err != nil {
		slog.Warn("unparsable frame", "error", err, "frame", frame)
		if strings.TrimSpace(frame) != "" {
			m.buffers.status().appendLine(frame)
		}
		return
	}
	m.sess.observe(line)
	routeMessage(line, m.cfg.Nick, m.buffers, m.send)
}

func (m *model) appendStatus(msg string) {
	m.buffers.status().appendLine(msg)
}

// chatViewport derives the chat pane's usable text area from the current
// terminal size.
func (m *model) chatViewport() viewportMetrics {
	w := m.width - sidebarWidth - sidebarBorder - chatBorder
	if w < 20 {
		w = 20
	}
	h := m.height - inputBoxHeight - statusBarHeight - chatBorder
	if h < 1 {
		h = 1
	}
	return viewportMetrics{width: w, height: h}
}

func (m *model) handleResize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.input.Width = m.width - 6
	m.sidebar.Width = sidebarWidth
	m.sidebar.Height = maxInt(1, m.height-inputBoxHeight-statusBarHeight-sidebarBorder)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	vp := m.chatViewport()

	switch msg.String() {
	case "ctrl+c":
		if m.conn.Connected() {
			m.conn.Quit("Goodbye!")
		}
		return tea.Quit, true

	case "ctrl+n":
		m.buffers.setActive(m.buffers.next(m.buffers.active))
		return nil, true

	case "ctrl+p":
		m.buffers.setActive(m.buffers.previous(m.buffers.active))
		return nil, true

	case "pgup":
		scrollBuffer(m.buffers.active, -(vp.height / 2), vp)
		return nil, true

	case "pgdown":
		scrollBuffer(m.buffers.active, vp.height/2, vp)
		return nil, true

	case "home":
		m.buffers.active.scrollOff = 0
		m.buffers.active.atBottom = false
		return nil, true

	case "end":
		m.buffers.active.atBottom = true
		return nil, true

	case "up":
		if len(m.inputHistory) == 0 {
			return nil, true
		}
		if m.historyIndex == -1 {
			m.historyTemp = m.input.Value()
			m.historyIndex = len(m.inputHistory) - 1
		} else if m.historyIndex > 0 {
			m.historyIndex--
		}
		m.input.SetValue(m.inputHistory[m.historyIndex])
		m.input.CursorEnd()
		return nil, true

	case "down":
		if m.historyIndex == -1 {
			return nil, true
		}
		if m.historyIndex < len(m.inputHistory)-1 {
			m.historyIndex++
			m.input.SetValue(m.inputHistory[m.historyIndex])
		} else {
			m.historyIndex = -1
			m.input.SetValue(m.historyTemp)
		}
		m.input.CursorEnd()
		return nil, true

	case "enter":
		return m.handleSubmit(), true
	}

	return nil, false
}

func (m *model) handleSubmit() tea.Cmd {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return nil
	}

	if len(m.inputHistory) == 0 || m.inputHistory[len(m.inputHistory)-1] != input {
		m.inputHistory = append(m.inputHistory, input)
		if len(m.inputHistory) > maxInputHistory {
			m.inputHistory = m.inputHistory[1:]
		}
	}
	m.historyIndex = -1
	m.historyTemp = ""

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	target := m.buffers.active
	if target == m.buffers.status() {
		m.appendStatus("Not in a channel. Use /join <channel> first")
		return nil
	}
	if err := m.conn.Privmsg(target.Name(), input); err != nil {
		m.appendStatus(err.Error())
		return nil
	}
	// Servers don't echo our own messages back.
	target.appendLine(fmt.Sprintf("<%s> %s", m.cfg.Nick, input))
	return nil
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	sidebar := m.sidebar
	sidebar.SetContent(m.renderBufferListing())

	vp := m.chatViewport()
	res := renderBuffer(m.buffers.active, vp)
	chat := strings.Join(res.visible(vp.height), "\n")

	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		sidebarBoxStyle.Height(m.sidebar.Height).Render(sidebar.View()),
		chatBoxStyle.Width(vp.width).Height(vp.height).Render(chat),
	)
	inputBox := inputBoxStyle.Width(m.width - 2).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, row, inputBox, m.renderStatusBar())
}

// renderBufferListing lists every buffer in ring order with the active one
// marked.
func (m model) renderBufferListing() string {
	var b strings.Builder
	b.WriteString(bufferTitleStyle.Render("BUFFERS") + "\n")
	for _, name := range m.buffers.names() {
		display := runewidth.FillRight(runewidth.Truncate(name, sidebarWidth-2, "..."), sidebarWidth-2)
		if name == m.buffers.active.Name() {
			b.WriteString(activeBufferStyle.Render("• "+display) + "\n")
		} else {
			b.WriteString("  " + display + "\n")
		}
	}
	return b.String()
}

func (m model) renderStatusBar() string {
	left := statusStateStyle.Render(fmt.Sprintf("[%s]", m.sess.state)) +
		statusBarStyle.Render(fmt.Sprintf("%s (%d buffers)", m.buffers.active.Name(), m.buffers.len()))
	clock := statusTimeStyle.Render(m.currentTime.Format("15:04"))

	clockWidth := lipgloss.Width(clock)
	leftWidth := maxInt(0, m.width-clockWidth)

	return lipgloss.NewStyle().Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.PlaceHorizontal(leftWidth, lipgloss.Left, left),
			lipgloss.PlaceHorizontal(clockWidth, lipgloss.Right, clock),
		),
	)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
