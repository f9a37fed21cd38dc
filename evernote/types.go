package evernote

// Notebook is a single Evernote notebook as exposed to the bot.
type Notebook struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// NoteDraft describes a note to be created on behalf of a user.
// NotebookGUID may be empty, in which case the service picks the
// account's default notebook.
type NoteDraft struct {
	Title        string
	Text         string
	NotebookGUID string
}
