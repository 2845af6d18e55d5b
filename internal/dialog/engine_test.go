package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/noterbot/core/telegram/state"
	"github.com/m3rciful/noterbot/internal/notes"
)

// fakeStore mirrors the persistent store semantics in memory.
type fakeStore struct {
	initialized map[int64]bool
	items       map[int64][]notes.Note
	next        map[int64]int64
	failWith    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		initialized: make(map[int64]bool),
		items:       make(map[int64][]notes.Note),
		next:        make(map[int64]int64),
	}
}

func (f *fakeStore) Init(_ context.Context, userID int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	if f.initialized[userID] {
		return false, nil
	}
	f.initialized[userID] = true
	f.next[userID] = 1
	return true, nil
}

func (f *fakeStore) Add(_ context.Context, userID int64, text string) (notes.Note, error) {
	if f.failWith != nil {
		return notes.Note{}, f.failWith
	}
	trimmed, err := notes.ValidateText(text)
	if err != nil {
		return notes.Note{}, err
	}
	if !f.initialized[userID] {
		return notes.Note{}, &notes.NotInitializedError{UserID: userID}
	}
	n := notes.Note{UserID: userID, ID: f.next[userID], Text: trimmed, CreatedDate: notes.Today()}
	f.next[userID]++
	f.items[userID] = append(f.items[userID], n)
	return n, nil
}

func (f *fakeStore) List(_ context.Context, userID int64) ([]notes.Note, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if !f.initialized[userID] {
		return nil, &notes.NotInitializedError{UserID: userID}
	}
	return f.items[userID], nil
}

func (f *fakeStore) Update(_ context.Context, userID, noteID int64, text string) (notes.Note, error) {
	if f.failWith != nil {
		return notes.Note{}, f.failWith
	}
	if !f.initialized[userID] {
		return notes.Note{}, &notes.NotInitializedError{UserID: userID}
	}
	trimmed, err := notes.ValidateText(text)
	if err != nil {
		return notes.Note{}, err
	}
	for i, n := range f.items[userID] {
		if n.ID == noteID {
			f.items[userID][i].Text = trimmed
			return f.items[userID][i], nil
		}
	}
	return notes.Note{}, &notes.NotFoundError{NoteID: noteID}
}

func (f *fakeStore) Delete(_ context.Context, userID, noteID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	if !f.initialized[userID] {
		return &notes.NotInitializedError{UserID: userID}
	}
	for i, n := range f.items[userID] {
		if n.ID == noteID {
			f.items[userID] = append(f.items[userID][:i], f.items[userID][i+1:]...)
			return nil
		}
	}
	return &notes.NotFoundError{NoteID: noteID}
}

func (f *fakeStore) Reset(_ context.Context, userID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	if !f.initialized[userID] {
		return &notes.NotInitializedError{UserID: userID}
	}
	f.items[userID] = nil
	f.next[userID] = 1
	return nil
}

func newTestEngine() (*Engine, *fakeStore, Sessions) {
	store := newFakeStore()
	sessions := state.NewMemoryManager()
	return NewEngine(store, sessions), store, sessions
}

func startUser(t *testing.T, e *Engine, userID int64) {
	t.Helper()
	reply, err := e.HandleCommand(context.Background(), userID, CmdStart)
	require.NoError(t, err)
	require.Equal(t, MsgInitCreated, reply.Text)
}

const user = int64(7)

func TestStartIsIdempotent(t *testing.T) {
	e, store, _ := newTestEngine()
	ctx := context.Background()

	reply, err := e.HandleCommand(ctx, user, CmdStart)
	require.NoError(t, err)
	assert.Equal(t, MsgInitCreated, reply.Text)

	_, err = store.Add(ctx, user, "keep me")
	require.NoError(t, err)

	reply, err = e.HandleCommand(ctx, user, CmdStart)
	require.NoError(t, err)
	assert.Equal(t, MsgInitExists, reply.Text)
	assert.Len(t, store.items[user], 1, "repeated start must not touch existing notes")
}

func TestAddFlow(t *testing.T) {
	e, store, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	reply, err := e.HandleCommand(ctx, user, CmdAdd)
	require.NoError(t, err)
	assert.Equal(t, MsgPromptNoteText, reply.Text)
	assert.True(t, reply.Prompt)
	assert.Equal(t, FlowAdd, reply.Flow)
	assert.Equal(t, StateAwaitingNoteText, sessions.GetState(user))

	reply, err = e.HandleText(ctx, user, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, MsgOpSuccess, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))

	require.Len(t, store.items[user], 1)
	assert.Equal(t, int64(1), store.items[user][0].ID)
	assert.Equal(t, "Buy milk", store.items[user][0].Text)
	assert.Equal(t, notes.Today(), store.items[user][0].CreatedDate)
}

func TestAddRejectsInvalidText(t *testing.T) {
	e, store, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	cases := map[string]struct {
		text string
		want string
	}{
		"empty":      {"   ", MsgNoteEmpty},
		"over limit": {strings.Repeat("x", notes.MaxTextLen+1), MsgNoteTooLong},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.HandleCommand(ctx, user, CmdAdd)
			require.NoError(t, err)

			reply, err := e.HandleText(ctx, user, tc.text)
			assert.Error(t, err)
			assert.Equal(t, tc.want, reply.Text)
			assert.Equal(t, StateIdle, sessions.GetState(user))
			assert.Empty(t, store.items[user], "rejected input must not mutate the store")
		})
	}
}

func TestUpdateFlow(t *testing.T) {
	e, store, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)
	first, err := store.Add(ctx, user, "original")
	require.NoError(t, err)

	reply, err := e.HandleCommand(ctx, user, CmdUpdate)
	require.NoError(t, err)
	assert.Equal(t, MsgPromptUpdateID, reply.Text)
	assert.Equal(t, StateAwaitingUpdateID, sessions.GetState(user))

	reply, err = e.HandleText(ctx, user, "1")
	require.NoError(t, err)
	assert.Equal(t, MsgPromptUpdateText, reply.Text)
	assert.True(t, reply.Prompt)
	assert.Equal(t, StateAwaitingUpdateText, sessions.GetState(user))

	reply, err = e.HandleText(ctx, user, "New text")
	require.NoError(t, err)
	assert.Equal(t, MsgOpSuccess, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))

	got := store.items[user][0]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "New text", got.Text)
	assert.Equal(t, first.CreatedDate, got.CreatedDate)
}

func TestUpdateUnknownID(t *testing.T) {
	e, store, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)
	_, err := store.Add(ctx, user, "only note")
	require.NoError(t, err)

	_, err = e.HandleCommand(ctx, user, CmdUpdate)
	require.NoError(t, err)

	reply, err := e.HandleText(ctx, user, "99")
	assert.Error(t, err)
	assert.Equal(t, MsgNoteNotFound, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))
	assert.Equal(t, "only note", store.items[user][0].Text)
}

func TestUpdateBadID(t *testing.T) {
	e, _, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	_, err := e.HandleCommand(ctx, user, CmdUpdate)
	require.NoError(t, err)

	reply, err := e.HandleText(ctx, user, "abc")
	assert.Error(t, err)
	assert.Equal(t, MsgBadNoteID, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))
}

func TestDeleteFlow(t *testing.T) {
	e, store, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)
	for _, text := range []string{"one", "two", "three"} {
		_, err := store.Add(ctx, user, text)
		require.NoError(t, err)
	}

	_, err := e.HandleCommand(ctx, user, CmdDelete)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingDeleteID, sessions.GetState(user))

	reply, err := e.HandleText(ctx, user, "2")
	require.NoError(t, err)
	assert.Equal(t, MsgOpSuccess, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))

	// Remaining ids keep their numbers and the counter moves on.
	require.Len(t, store.items[user], 2)
	assert.Equal(t, int64(1), store.items[user][0].ID)
	assert.Equal(t, int64(3), store.items[user][1].ID)
	next, err := store.Add(ctx, user, "four")
	require.NoError(t, err)
	assert.Equal(t, int64(4), next.ID)
}

func TestDeleteBadID(t *testing.T) {
	e, _, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	_, err := e.HandleCommand(ctx, user, CmdDelete)
	require.NoError(t, err)

	reply, err := e.HandleText(ctx, user, "abc")
	assert.Error(t, err)
	assert.Equal(t, MsgBadNoteID, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))
}

func TestCancelMidConversation(t *testing.T) {
	e, _, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	_, err := e.HandleCommand(ctx, user, CmdAdd)
	require.NoError(t, err)

	reply, err := e.HandleCommand(ctx, user, CmdCancel)
	require.NoError(t, err)
	assert.Equal(t, MsgCancelled, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))
}

func TestEntryPointSupersedesPendingFlow(t *testing.T) {
	e, _, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	_, err := e.HandleCommand(ctx, user, CmdAdd)
	require.NoError(t, err)

	reply, err := e.HandleCommand(ctx, user, CmdUpdate)
	require.NoError(t, err)
	assert.Equal(t, MsgPromptUpdateID, reply.Text)
	assert.Equal(t, StateAwaitingUpdateID, sessions.GetState(user))
}

func TestOtherCommandRepromptsMidConversation(t *testing.T) {
	e, _, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	_, err := e.HandleCommand(ctx, user, CmdAdd)
	require.NoError(t, err)

	reply, err := e.HandleCommand(ctx, user, CmdHelp)
	require.NoError(t, err)
	assert.Equal(t, MsgPromptNoteText, reply.Text)
	assert.True(t, reply.Prompt)
	assert.Equal(t, StateAwaitingNoteText, sessions.GetState(user))
}

func TestListAndReset(t *testing.T) {
	e, store, _ := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	reply, err := e.HandleCommand(ctx, user, CmdNotes)
	require.NoError(t, err)
	assert.Equal(t, MsgNoNotes, reply.Text)

	_, err = store.Add(ctx, user, "Buy milk")
	require.NoError(t, err)

	reply, err = e.HandleCommand(ctx, user, CmdList)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "1. Buy milk - ")

	reply, err = e.HandleCommand(ctx, user, CmdReset)
	require.NoError(t, err)
	assert.Equal(t, MsgReset, reply.Text)

	next, err := store.Add(ctx, user, "fresh start")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.ID, "reset must restart the id counter")
}

func TestIdleFallbacks(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	reply, err := e.HandleText(ctx, user, "hello there")
	require.NoError(t, err)
	assert.Equal(t, MsgNotACommand, reply.Text)

	reply, err = e.HandleCommand(ctx, user, "frobnicate")
	require.NoError(t, err)
	assert.Equal(t, MsgUnknownCommand, reply.Text)
}

func TestUninitializedStoreIsSurfaced(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	reply, err := e.HandleCommand(ctx, user, CmdNotes)
	assert.True(t, notes.IsNotInitialized(err))
	assert.Equal(t, MsgNotInitialized, reply.Text)

	reply, err = e.HandleCommand(ctx, user, CmdReset)
	assert.True(t, notes.IsNotInitialized(err))
	assert.Equal(t, MsgNotInitialized, reply.Text)
}

func TestStorageFaultNeverEscapesAsRawText(t *testing.T) {
	e, store, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)
	store.failWith = &notes.StorageError{Op: "notes.list", Err: assert.AnError}

	reply, err := e.HandleCommand(ctx, user, CmdNotes)
	assert.Error(t, err)
	assert.Equal(t, MsgStorageFailure, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))
}

func TestCancelFromCallback(t *testing.T) {
	e, _, sessions := newTestEngine()
	ctx := context.Background()
	startUser(t, e, user)

	_, err := e.HandleCommand(ctx, user, CmdDelete)
	require.NoError(t, err)

	reply := e.Cancel(ctx, user)
	assert.Equal(t, MsgCancelled, reply.Text)
	assert.Equal(t, StateIdle, sessions.GetState(user))
}
