package dialog

// User-facing reply texts.
const (
	MsgPromptNoteText   = "Please send the text of the note or type /cancel to reverse the action"
	MsgPromptUpdateID   = "Please send the ID of the note you want to update or type /cancel to reverse the action"
	MsgPromptUpdateText = "Please send the new text of the note or type /cancel to reverse the action"
	MsgPromptDeleteID   = "Please send the ID of the note you want to delete or type /cancel to reverse the action"

	MsgCancelled = "Operation cancelled. You can use another command."

	MsgInitCreated = "Your database has been initialized successfully!"
	MsgInitExists  = "Your database already exists! You can start adding notes."
	MsgInitFailed  = "Failed to initialize the database. Please try again later"

	MsgOpSuccess   = "Operation success!"
	MsgNoteEmpty   = "Note is empty."
	MsgNoteTooLong = "Note is too large. Note limit is set to 350 characters."
	MsgNoNotes     = "You don't have any notes yet"
	MsgReset       = "The database has been reset successfully!"

	MsgBadNoteID      = "This is not a valid note ID. Please send a number."
	MsgNoteNotFound   = "This note ID does not exist."
	MsgNotInitialized = "Your database is not initialized yet. Use /start first."
	MsgStorageFailure = "An error occurred, try later!"

	MsgNotACommand    = "This is not a command, use /help"
	MsgUnknownCommand = "Unknown command, use /help"
)

// MsgHelp lists the available commands.
const MsgHelp = `Bot accepts the following commands:
/start - To initialize the database
/help - All available commands
/add_note - To add note to database
/update - To update note in database
/delete - To delete note in database
/notes - To get a list of notes
/reset - To clear database

Please remember: Do not store sensitive information (e.g., passwords, private data) in this bot's database`

// MsgWelcome is sent on /start before the initialization result.
const MsgWelcome = `Welcome to the Noter!
Your database will be created automatically, the bot can only use one database per user.
Use /help to see available commands.

Please note: This bot is not designed to store sensitive information, such as passwords or personal data.`
