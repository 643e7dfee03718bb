package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillchat/quill/internal/chat"
	"github.com/quillchat/quill/internal/tui"
)

// LoadSummariesCmd refreshes the conversation list.
func LoadSummariesCmd(engine *chat.Engine) tea.Cmd {
	return func() tea.Msg {
		if err := engine.LoadSummaries(context.Background()); err != nil {
			return tui.SummariesLoadedMsg{Err: err}
		}
		return tui.SummariesLoadedMsg{Summaries: engine.Summaries()}
	}
}

// LoadConversationCmd fetches the full transcript for id and makes it active.
func LoadConversationCmd(engine *chat.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		if err := engine.LoadConversation(context.Background(), id); err != nil {
			return tui.ConversationLoadedMsg{Err: err}
		}
		return tui.ConversationLoadedMsg{Conversation: engine.Active()}
	}
}

// SendMessageCmd submits one user message through the engine.
func SendMessageCmd(engine *chat.Engine, text string) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.SendMessage(context.Background(), text)
		return tui.SendResultMsg{Result: res, Err: err}
	}
}

// DeleteConversationCmd removes a conversation.
func DeleteConversationCmd(engine *chat.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		err := engine.DeleteConversation(context.Background(), id)
		return tui.ConversationDeletedMsg{ID: id, Err: err}
	}
}
