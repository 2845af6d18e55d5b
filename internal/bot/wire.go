package bot

import (
	tg "github.com/m3rciful/noterbot/core/telegram"
	"github.com/m3rciful/noterbot/core/telegram/commands"
	"github.com/m3rciful/noterbot/core/telegram/state"
	"github.com/m3rciful/noterbot/internal/dialog"
)

// Register wires all commands, callbacks and fallbacks into the registry.
func Register(reg *tg.Registry, h *Handlers) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "To initialize the database",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "All available commands",
	})
	reg.RegisterCommand("/add_note", commands.Command{
		Handler:     h.AddNote,
		Description: "To add note to database",
	})
	reg.RegisterCommand("/update", commands.Command{
		Handler:     h.UpdateNote,
		Description: "To update note in database",
	})
	reg.RegisterCommand("/delete", commands.Command{
		Handler:     h.DeleteNote,
		Description: "To delete note in database",
	})
	reg.RegisterCommand("/notes", commands.Command{
		Handler:     h.ListNotes,
		Description: "To get a list of notes",
		Aliases:     []string{"list"},
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     h.Reset,
		Description: "To clear database",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     h.Cancel,
		Description: "To cancel the current operation",
		Hidden:      true,
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.Stats,
		Description: "Store totals",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(CallbackCancel, h.CancelCallback)
	reg.SetTextFallback(h.FallbackText)
}

// RegisterStateHandlers binds every conversation state to the shared text
// turn handler; the engine dispatches on the actual state.
func RegisterStateHandlers(h *Handlers) {
	for _, st := range []state.State{
		dialog.StateAwaitingNoteText,
		dialog.StateAwaitingUpdateID,
		dialog.StateAwaitingUpdateText,
		dialog.StateAwaitingDeleteID,
	} {
		state.RegisterHandler(st, h.ConversationText)
	}
}
