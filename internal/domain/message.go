package domain

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance caches struct information.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("notblank", validateNotBlank)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// AvatarBaseURL is the avatar service used for every author.
const AvatarBaseURL = "https://api.dicebear.com/7.x/avatars/svg"

// AvatarURL derives the avatar location for an author. The same name always
// yields the same URL.
func AvatarURL(username string) string {
	return AvatarBaseURL + "?seed=" + url.QueryEscape(username)
}

// Message is one chat message. Messages are immutable once stored and are
// only ever deleted as a whole.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content" validate:"required,notblank"`
	UserName  string    `json:"user_name" validate:"required"`
	AvatarURL string    `json:"avatar_url" validate:"required,url"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate runs the struct tag checks on a message that is about to be written.
func (m *Message) Validate() error {
	return validatorInstance.Struct(m)
}

// NewMessage prepares a message for insertion. Content is kept exactly as
// typed; only the emptiness check looks at the trimmed form.
func NewMessage(username, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	if username == "" {
		return nil, ErrNoSession
	}
	return &Message{
		Content:   content,
		UserName:  username,
		AvatarURL: AvatarURL(username),
	}, nil
}

// MessageRepository defines the contract for message storage.
type MessageRepository interface {
	// Latest returns at most limit messages, newest first.
	Latest(ctx context.Context, limit int) ([]Message, error)

	// Create inserts a message and returns it with its backend-assigned
	// id and timestamp.
	Create(ctx context.Context, msg *Message) (*Message, error)
}
