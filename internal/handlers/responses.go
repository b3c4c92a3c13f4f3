package handlers

import (
	"time"

	"github.com/nfrund/livechat/internal/domain"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is the API view of a message.
type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// MessagesResponse is the body of GET /api/messages.
type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
	Count    int               `json:"count"`
}

// NewMessageResponse creates a MessageResponse from a domain.Message.
func NewMessageResponse(msg domain.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		Content:   msg.Content,
		UserName:  msg.UserName,
		AvatarURL: msg.AvatarURL,
		CreatedAt: msg.CreatedAt,
	}
}

// NewMessagesResponse creates the list body, keeping the given order.
func NewMessagesResponse(messages []domain.Message) MessagesResponse {
	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = NewMessageResponse(m)
	}
	return MessagesResponse{Messages: out, Count: len(out)}
}
