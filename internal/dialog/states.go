package dialog

import "github.com/m3rciful/noterbot/core/telegram/state"

// Conversation states. StateIdle means no conversation is in progress.
const (
	StateIdle = state.StateIdle

	StateAwaitingNoteText   state.State = "notes:awaiting_note_text"
	StateAwaitingUpdateID   state.State = "notes:awaiting_update_id"
	StateAwaitingUpdateText state.State = "notes:awaiting_update_text"
	StateAwaitingDeleteID   state.State = "notes:awaiting_delete_id"
)

// Command names as engine events, without the leading slash.
const (
	CmdStart  = "start"
	CmdHelp   = "help"
	CmdAdd    = "add_note"
	CmdUpdate = "update"
	CmdDelete = "delete"
	CmdNotes  = "notes"
	CmdList   = "list"
	CmdReset  = "reset"
	CmdCancel = "cancel"
)

// tempKeyUpdateID carries the chosen note id between the two update turns.
const tempKeyUpdateID = "update_note_id"

// Sessions is the per-user conversation state the engine drives. The telegram
// session manager satisfies it; tests inject the in-memory implementation.
type Sessions interface {
	GetState(userID int64) state.State
	SetState(userID int64, st state.State)
	SetTemp(userID int64, key string, value interface{})
	GetTempInt64(userID int64, key string) (int64, bool)
	InProgress(userID int64) bool
	Clear(userID int64)
}
