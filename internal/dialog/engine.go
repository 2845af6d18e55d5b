package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/noterbot/core/logger"
	"github.com/m3rciful/noterbot/core/telegram/state"
	"github.com/m3rciful/noterbot/internal/notes"
)

const component = "service.dialog"

// Flow names used as cancel-callback payloads and in transition logs.
const (
	FlowAdd    = "add"
	FlowUpdate = "update"
	FlowDelete = "delete"
)

// Store is the per-user note store the engine drives.
type Store interface {
	Init(ctx context.Context, userID int64) (bool, error)
	Add(ctx context.Context, userID int64, text string) (notes.Note, error)
	List(ctx context.Context, userID int64) ([]notes.Note, error)
	Update(ctx context.Context, userID, noteID int64, text string) (notes.Note, error)
	Delete(ctx context.Context, userID, noteID int64) error
	Reset(ctx context.Context, userID int64) error
}

// Reply is the outcome of one conversational turn. Prompt marks replies that
// expect a follow-up message, so the transport may attach a cancel control
// tagged with Flow.
type Reply struct {
	Text   string
	Prompt bool
	Flow   string
}

// Engine is the conversation state machine. It holds no per-user state
// itself; everything lives in the injected Sessions and Store. Store faults
// never escape: every turn produces a reply text, and the returned error
// exists only so the transport layer can log it.
type Engine struct {
	store    Store
	sessions Sessions
	locks    *userLocks
}

// NewEngine builds the engine over the given store and session manager.
func NewEngine(store Store, sessions Sessions) *Engine {
	return &Engine{
		store:    store,
		sessions: sessions,
		locks:    newUserLocks(),
	}
}

// HandleCommand processes a command event (name without the leading slash).
func (e *Engine) HandleCommand(ctx context.Context, userID int64, name string) (Reply, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	name = strings.TrimPrefix(strings.TrimSpace(name), "/")

	if e.sessions.InProgress(userID) {
		switch name {
		case CmdCancel:
			return e.cancel(ctx, userID), nil
		case CmdAdd, CmdUpdate, CmdDelete:
			// Entry-point command mid-conversation cancels the pending
			// flow and starts its own.
			e.clear(ctx, userID, "superseded")
		default:
			return Reply{Text: e.promptFor(e.sessions.GetState(userID)), Prompt: true, Flow: e.flowFor(e.sessions.GetState(userID))}, nil
		}
	}

	switch name {
	case CmdStart:
		return e.start(ctx, userID)
	case CmdHelp:
		return Reply{Text: MsgHelp}, nil
	case CmdAdd:
		e.transition(ctx, userID, StateAwaitingNoteText)
		return Reply{Text: MsgPromptNoteText, Prompt: true, Flow: FlowAdd}, nil
	case CmdUpdate:
		e.transition(ctx, userID, StateAwaitingUpdateID)
		return Reply{Text: MsgPromptUpdateID, Prompt: true, Flow: FlowUpdate}, nil
	case CmdDelete:
		e.transition(ctx, userID, StateAwaitingDeleteID)
		return Reply{Text: MsgPromptDeleteID, Prompt: true, Flow: FlowDelete}, nil
	case CmdNotes, CmdList:
		return e.list(ctx, userID)
	case CmdReset:
		return e.reset(ctx, userID)
	case CmdCancel:
		return Reply{Text: MsgCancelled}, nil
	default:
		return Reply{Text: MsgUnknownCommand}, nil
	}
}

// HandleText processes a plain text message according to the current state.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	switch e.sessions.GetState(userID) {
	case StateAwaitingNoteText:
		return e.receiveNoteText(ctx, userID, text)
	case StateAwaitingUpdateID:
		return e.receiveUpdateID(ctx, userID, text)
	case StateAwaitingUpdateText:
		return e.receiveUpdateText(ctx, userID, text)
	case StateAwaitingDeleteID:
		return e.receiveDeleteID(ctx, userID, text)
	default:
		return Reply{Text: MsgNotACommand}, nil
	}
}

// Cancel aborts any pending conversation, e.g. from an inline cancel button.
func (e *Engine) Cancel(ctx context.Context, userID int64) Reply {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()
	return e.cancel(ctx, userID)
}

func (e *Engine) start(ctx context.Context, userID int64) (Reply, error) {
	created, err := e.store.Init(ctx, userID)
	if err != nil {
		return Reply{Text: MsgInitFailed}, err
	}
	if created {
		return Reply{Text: MsgInitCreated}, nil
	}
	return Reply{Text: MsgInitExists}, nil
}

func (e *Engine) list(ctx context.Context, userID int64) (Reply, error) {
	list, err := e.store.List(ctx, userID)
	if err != nil {
		return Reply{Text: storeFaultText(err)}, err
	}
	if len(list) == 0 {
		return Reply{Text: MsgNoNotes}, nil
	}
	return Reply{Text: notes.Render(list)}, nil
}

func (e *Engine) reset(ctx context.Context, userID int64) (Reply, error) {
	if err := e.store.Reset(ctx, userID); err != nil {
		return Reply{Text: storeFaultText(err)}, err
	}
	return Reply{Text: MsgReset}, nil
}

func (e *Engine) receiveNoteText(ctx context.Context, userID int64, text string) (Reply, error) {
	defer e.clear(ctx, userID, "turn_done")

	trimmed, err := notes.ValidateText(text)
	if err != nil {
		return Reply{Text: validationText(err)}, err
	}
	if _, err := e.store.Add(ctx, userID, trimmed); err != nil {
		return Reply{Text: storeFaultText(err)}, err
	}
	return Reply{Text: MsgOpSuccess}, nil
}

func (e *Engine) receiveUpdateID(ctx context.Context, userID int64, text string) (Reply, error) {
	noteID, ok := parseNoteID(text)
	if !ok {
		e.clear(ctx, userID, "bad_id")
		return Reply{Text: MsgBadNoteID}, &notes.ValidationError{Reason: notes.ReasonBadID}
	}

	list, err := e.store.List(ctx, userID)
	if err != nil {
		e.clear(ctx, userID, "store_fault")
		return Reply{Text: storeFaultText(err)}, err
	}
	if !containsID(list, noteID) {
		e.clear(ctx, userID, "not_found")
		return Reply{Text: MsgNoteNotFound}, &notes.NotFoundError{NoteID: noteID}
	}

	e.sessions.SetTemp(userID, tempKeyUpdateID, noteID)
	e.transition(ctx, userID, StateAwaitingUpdateText)
	return Reply{Text: MsgPromptUpdateText, Prompt: true, Flow: FlowUpdate}, nil
}

func (e *Engine) receiveUpdateText(ctx context.Context, userID int64, text string) (Reply, error) {
	defer e.clear(ctx, userID, "turn_done")

	noteID, ok := e.sessions.GetTempInt64(userID, tempKeyUpdateID)
	if !ok {
		// Session lost its pending id; treat the turn as cancelled.
		return Reply{Text: MsgCancelled}, nil
	}

	trimmed, err := notes.ValidateText(text)
	if err != nil {
		return Reply{Text: validationText(err)}, err
	}
	if _, err := e.store.Update(ctx, userID, noteID, trimmed); err != nil {
		return Reply{Text: storeFaultText(err)}, err
	}
	return Reply{Text: MsgOpSuccess}, nil
}

func (e *Engine) receiveDeleteID(ctx context.Context, userID int64, text string) (Reply, error) {
	defer e.clear(ctx, userID, "turn_done")

	noteID, ok := parseNoteID(text)
	if !ok {
		return Reply{Text: MsgBadNoteID}, &notes.ValidationError{Reason: notes.ReasonBadID}
	}
	if err := e.store.Delete(ctx, userID, noteID); err != nil {
		return Reply{Text: storeFaultText(err)}, err
	}
	return Reply{Text: MsgOpSuccess}, nil
}

func (e *Engine) cancel(ctx context.Context, userID int64) Reply {
	e.clear(ctx, userID, "cancelled")
	return Reply{Text: MsgCancelled}
}

func (e *Engine) transition(ctx context.Context, userID int64, next state.State) {
	prev := e.sessions.GetState(userID)
	e.sessions.SetState(userID, next)
	logger.Debug(ctx, component, "state.transition",
		slog.Int64("user_id", userID),
		slog.String("state", string(prev)),
		slog.String("next_state", string(next)),
	)
}

func (e *Engine) clear(ctx context.Context, userID int64, reason string) {
	prev := e.sessions.GetState(userID)
	e.sessions.Clear(userID)
	if prev != StateIdle {
		logger.Debug(ctx, component, "state.cleared",
			slog.Int64("user_id", userID),
			slog.String("state", string(prev)),
			slog.String("reason", reason),
		)
	}
}

func (e *Engine) promptFor(st state.State) string {
	switch st {
	case StateAwaitingNoteText:
		return MsgPromptNoteText
	case StateAwaitingUpdateID:
		return MsgPromptUpdateID
	case StateAwaitingUpdateText:
		return MsgPromptUpdateText
	case StateAwaitingDeleteID:
		return MsgPromptDeleteID
	default:
		return MsgNotACommand
	}
}

func (e *Engine) flowFor(st state.State) string {
	switch st {
	case StateAwaitingNoteText:
		return FlowAdd
	case StateAwaitingUpdateID, StateAwaitingUpdateText:
		return FlowUpdate
	case StateAwaitingDeleteID:
		return FlowDelete
	default:
		return ""
	}
}

func parseNoteID(text string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func containsID(list []notes.Note, id int64) bool {
	for _, n := range list {
		if n.ID == id {
			return true
		}
	}
	return false
}

func validationText(err error) string {
	var verr *notes.ValidationError
	if !errors.As(err, &verr) {
		return MsgStorageFailure
	}
	switch verr.Reason {
	case notes.ReasonEmpty:
		return MsgNoteEmpty
	case notes.ReasonTooLong:
		return MsgNoteTooLong
	default:
		return MsgBadNoteID
	}
}

func storeFaultText(err error) string {
	switch {
	case notes.IsNotInitialized(err):
		return MsgNotInitialized
	case notes.IsNotFound(err):
		return MsgNoteNotFound
	default:
		var verr *notes.ValidationError
		if errors.As(err, &verr) {
			return validationText(err)
		}
		return MsgStorageFailure
	}
}
