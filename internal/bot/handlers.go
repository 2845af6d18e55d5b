package bot

import (
	"fmt"
	"strings"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/noterbot/core/logger"
	"github.com/m3rciful/noterbot/core/telegram/callbacks"
	"github.com/m3rciful/noterbot/core/telegram/helpers"
	"github.com/m3rciful/noterbot/core/telegram/keyboard"
	"github.com/m3rciful/noterbot/internal/dialog"
	"github.com/m3rciful/noterbot/internal/notes"
)

// CallbackCancel is the inline cancel button key attached to every prompt.
const CallbackCancel = "notes_cancel"

// Handlers bridges Telegram updates to the conversation engine.
type Handlers struct {
	engine *dialog.Engine
	store  *notes.Service
}

// NewHandlers builds the handler set over the engine and store.
func NewHandlers(engine *dialog.Engine, store *notes.Service) *Handlers {
	return &Handlers{engine: engine, store: store}
}

// sendReply delivers an engine reply, attaching a cancel button to prompts.
func sendReply(c tele.Context, reply dialog.Reply) error {
	if reply.Prompt {
		return helpers.SendWithMarkup(c, reply.Text, keyboard.SingleCancelMarkup(CallbackCancel, reply.Flow))
	}
	return helpers.SendText(c, reply.Text)
}

func (h *Handlers) command(c tele.Context, name string) error {
	ctx := helpers.WithHandler(c, "cmd."+name)
	reply, err := h.engine.HandleCommand(ctx, c.Sender().ID, name)
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// Start greets the user and initializes their store.
func (h *Handlers) Start(c tele.Context) error {
	if err := helpers.SendText(c, dialog.MsgWelcome); err != nil {
		return err
	}
	return h.command(c, dialog.CmdStart)
}

// Help lists the available commands.
func (h *Handlers) Help(c tele.Context) error {
	return h.command(c, dialog.CmdHelp)
}

// AddNote starts the add-note conversation.
func (h *Handlers) AddNote(c tele.Context) error {
	return h.command(c, dialog.CmdAdd)
}

// UpdateNote starts the update conversation.
func (h *Handlers) UpdateNote(c tele.Context) error {
	return h.command(c, dialog.CmdUpdate)
}

// DeleteNote starts the delete conversation.
func (h *Handlers) DeleteNote(c tele.Context) error {
	return h.command(c, dialog.CmdDelete)
}

// ListNotes replies with the rendered note list.
func (h *Handlers) ListNotes(c tele.Context) error {
	return h.command(c, dialog.CmdNotes)
}

// Reset wipes the user's store and restarts the id counter.
func (h *Handlers) Reset(c tele.Context) error {
	return h.command(c, dialog.CmdReset)
}

// Cancel aborts the pending conversation, if any.
func (h *Handlers) Cancel(c tele.Context) error {
	return h.command(c, dialog.CmdCancel)
}

// ConversationText feeds a text turn into the active conversation.
func (h *Handlers) ConversationText(c tele.Context) error {
	ctx := helpers.WithHandler(c, "fsm.notes")
	reply, err := h.engine.HandleText(ctx, c.Sender().ID, c.Text())
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// FallbackText handles text that matched no command and no conversation:
// unknown commands and bare text both get their dedicated reply.
func (h *Handlers) FallbackText(c tele.Context) error {
	text := c.Text()
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		name := strings.TrimPrefix(strings.Fields(text)[0], "/")
		return h.command(c, name)
	}
	ctx := helpers.WithHandler(c, "text.fallback")
	reply, err := h.engine.HandleText(ctx, c.Sender().ID, text)
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// CancelCallback handles the inline cancel button under prompts. The payload
// carries the flow the prompt belonged to.
func (h *Handlers) CancelCallback(c tele.Context) error {
	ctx := helpers.WithHandler(c, "callback.cancel")
	flow := callbacks.CallbackPayload(c)
	reply := h.engine.Cancel(ctx, c.Sender().ID)
	logger.Debug(ctx, "tg", "notes.cancel",
		slog.Int64("user_id", c.Sender().ID),
		slog.String("flow", flow),
	)
	// Replace the prompt in place so the stale button disappears.
	return helpers.EditOrSendText(c, reply.Text)
}

// Stats reports store totals. Admin-only, hidden from the command menu.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := helpers.WithHandler(c, "cmd.stats")
	st, err := h.store.Stats(ctx)
	if err != nil {
		if sendErr := helpers.SendText(c, dialog.MsgStorageFailure); sendErr != nil {
			return sendErr
		}
		return err
	}
	return helpers.SendText(c, fmt.Sprintf("Users: %d\nNotes: %d", st.Users, st.Notes))
}
