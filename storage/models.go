// Package storage persists users and durable work records in Postgres.
package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User modes. Mode is a free-form lowercase token; these are the two the
// bot itself offers.
const (
	ModeMultipleNotes = "multiple_notes"
	ModeOneNote       = "one_note"
)

// Session states stored on the user record. An empty state means idle.
const (
	StateIdle           = ""
	StateSelectNotebook = "select_notebook"
	StateSwitchMode     = "switch_mode"
)

// Notebook is the {guid,name} pair stored on the user record as JSONB.
type Notebook struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// Value implements driver.Valuer for the current_notebook column.
func (n *Notebook) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner for the current_notebook column.
func (n *Notebook) Scan(src any) error {
	if src == nil {
		*n = Notebook{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, n)
	case string:
		return json.Unmarshal([]byte(v), n)
	default:
		return fmt.Errorf("storage: cannot scan %T into Notebook", src)
	}
}

// Places maps a notebook guid to the pinned note guid used in one_note
// mode. Stored as JSONB.
type Places map[string]string

// Value implements driver.Valuer for the places column.
func (p Places) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for the places column.
func (p *Places) Scan(src any) error {
	if src == nil {
		*p = Places{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("storage: cannot scan %T into Places", src)
	}
}

// User is the per-user session record. It is mutated only by the session
// layer and saved synchronously on every mutation so that state survives
// restarts.
type User struct {
	ID                  int64      `db:"id"`
	TelegramChatID      int64      `db:"telegram_chat_id"`
	EvernoteAccessToken string     `db:"evernote_access_token"`
	Mode                string     `db:"mode"`
	State               string     `db:"state"`
	CurrentNotebook     *Notebook  `db:"current_notebook"`
	Places              Places     `db:"places"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// TelegramUpdate records a pending note-creation request for the worker.
// Immutable after creation within the bot core.
type TelegramUpdate struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	RequestType     string          `db:"request_type"`
	StatusMessageID int             `db:"status_message_id"`
	Data            json.RawMessage `db:"data"`
	CreatedAt       time.Time       `db:"created_at"`
}

// DownloadTask records deferred media retrieval. The bot only creates
// tasks; a worker marks them completed.
type DownloadTask struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	FileID    string    `db:"file_id"`
	FileSize  int64     `db:"file_size"`
	Completed bool      `db:"completed"`
	CreatedAt time.Time `db:"created_at"`
}
