package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/codeoverview/internal/overview"
)

// checkIDMsg fires once typing has paused long enough to validate the ID.
type checkIDMsg struct {
	seq int
	id  string
}

type idCheckedMsg struct {
	id     string
	exists bool
	err    error
}

type overviewLoadedMsg struct {
	id  string
	doc overview.Document
	err error
}

type chatReplyMsg struct {
	id      string
	reply   string
	err     error
	saveErr error
}

func scheduleCheck(seq int, id string, after time.Duration) tea.Cmd {
	if after <= 0 {
		return func() tea.Msg { return checkIDMsg{seq: seq, id: id} }
	}
	return tea.Tick(after, func(time.Time) tea.Msg {
		return checkIDMsg{seq: seq, id: id}
	})
}

func checkExists(ctx context.Context, st Store, id string) tea.Cmd {
	return func() tea.Msg {
		ok, err := st.Exists(ctx, id)
		return idCheckedMsg{id: id, exists: ok, err: err}
	}
}

func loadOverview(ctx context.Context, st Store, id string) tea.Cmd {
	return func() tea.Msg {
		doc, err := st.Get(ctx, id)
		return overviewLoadedMsg{id: id, doc: doc, err: err}
	}
}

// sendChat records the transcript ending in the user's turn, then asks the
// chat endpoint for a reply. The write is best-effort.
func sendChat(ctx context.Context, st Store, chat Chatter, id string, history []overview.Turn) tea.Cmd {
	return func() tea.Msg {
		saveErr := st.UpdateChatHistory(ctx, id, history)
		reply, err := chat.Chat(ctx, id, history)
		return chatReplyMsg{id: id, reply: reply, err: err, saveErr: saveErr}
	}
}
