package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// CommandHandler processes one user command. It may return a tea.Cmd to run
// after the command completes.
type CommandHandler func(m *model, args []string) (tea.Cmd, error)

func (m *model) setupCommandHandlers() {
	m.commandHandlers = map[string]CommandHandler{
		"/join":   cmdJoin,
		"/part":   cmdPart,
		"/msg":    cmdMsg,
		"/buffer": cmdBuffer,
		"/quit":   cmdQuit,
	}
}

// handleCommand dispatches a slash-prefixed input line.
func (m *model) handleCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	handler, ok := m.commandHandlers[strings.ToLower(parts[0])]
	if !ok {
		m.appendStatus(fmt.Sprintf("Unknown command: %s", parts[0]))
		return nil
	}

	cmd, err := handler(m, parts[1:])
	if err != nil {
		m.appendStatus(err.Error())
	}
	return cmd
}

func cmdJoin(m *model, args []string) (tea.Cmd, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /join <channel>")
	}
	channel := args[0]
	if !isChannel(channel) {
		channel = channelMarker + channel
	}
	if err := m.send(fmt.Sprintf("JOIN %s", channel)); err != nil {
		return nil, err
	}
	m.appendStatus(fmt.Sprintf("Joining %s...", channel))
	return nil, nil
}

// cmdPart leaves a channel: the named one, or the active buffer when no
// argument is given. Only channel-marked names are accepted; parting an
// arbitrary existing buffer (a private query, say) makes no sense on the
// wire.
func cmdPart(m *model, args []string) (tea.Cmd, error) {
	var target string
	var message string

	if len(args) > 0 {
		target = args[0]
		message = strings.Join(args[1:], " ")
	} else {
		target = m.buffers.active.Name()
	}
	if !isChannel(target) {
		return nil, fmt.Errorf("usage: /part [#channel] [message]")
	}

	if err := m.send(fmt.Sprintf("PART %s :%s", target, message)); err != nil {
		return nil, err
	}
	m.appendStatus(fmt.Sprintf("--> PART %s (%s)", target, message))

	if buf := m.buffers.find(target); buf != nil {
		m.buffers.remove(buf)
	}
	return nil, nil
}

func cmdMsg(m *model, args []string) (tea.Cmd, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: /msg <nick> <message>")
	}
	target := args[0]
	message := strings.Join(args[1:], " ")

	if err := m.send(fmt.Sprintf("PRIVMSG %s :%s", target, message)); err != nil {
		return nil, err
	}

	buf := m.buffers.findOrCreate(target)
	buf.appendLine(fmt.Sprintf("<%s> %s", m.cfg.Nick, message))
	return nil, nil
}

// cmdBuffer switches the active buffer by exact name.
func cmdBuffer(m *model, args []string) (tea.Cmd, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /buffer <name>")
	}
	buf := m.buffers.find(args[0])
	if buf == nil {
		return nil, fmt.Errorf("no buffer named %q", args[0])
	}
	m.buffers.setActive(buf)
	return nil, nil
}

func cmdQuit(m *model, args []string) (tea.Cmd, error) {
	message := strings.Join(args, " ")
	if message == "" {
		message = "Goodbye!"
	}
	if m.conn != nil {
		m.conn.Quit(message)
	}
	return tea.Quit, nil
}
