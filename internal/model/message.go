package model

import "time"

// Message is the central entity: a one-time anonymous message from a sender
// to a named recipient. Content is immutable after creation and messages are
// never hard-deleted; permanence is a product guarantee.
type Message struct {
	ID             string
	SenderID       string
	RecipientEmail string
	RecipientName  string
	RecipientID    *string
	Content        string
	IsRead         bool
	ReadAt         *time.Time
	IsDeleted      bool
	DeletedAt      *time.Time
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}

// SendMessageRequest represents a message creation request.
type SendMessageRequest struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	Content        string `json:"content"`
}

// MessageResponse represents a message as seen by its recipient. The sender
// is never exposed.
type MessageResponse struct {
	ID            string     `json:"id"`
	RecipientName string     `json:"recipient_name"`
	Content       string     `json:"content,omitempty"`
	IsRead        bool       `json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SentMessageResponse represents a message as seen by its sender. Content is
// included; the recipient already knows it and the sender wrote it.
type SentMessageResponse struct {
	ID             string     `json:"id"`
	RecipientName  string     `json:"recipient_name"`
	RecipientEmail string     `json:"recipient_email"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ReadMessageResponse is the read-unlock response. CreditSpent reports
// whether this call consumed a credit (false on idempotent re-reads).
type ReadMessageResponse struct {
	Message     MessageResponse `json:"message"`
	CreditSpent bool            `json:"credit_spent"`
}

// MessageToResponse converts a Message to its recipient-facing form. The
// content is only revealed once the message has been read.
func MessageToResponse(m *Message) MessageResponse {
	resp := MessageResponse{
		ID:            m.ID,
		RecipientName: m.RecipientName,
		IsRead:        m.IsRead,
		ReadAt:        m.ReadAt,
		CreatedAt:     m.CreatedAt,
	}
	if m.IsRead {
		resp.Content = m.Content
	}
	return resp
}

// MessageToSentResponse converts a Message to its sender-facing form.
func MessageToSentResponse(m *Message) SentMessageResponse {
	return SentMessageResponse{
		ID:             m.ID,
		RecipientName:  m.RecipientName,
		RecipientEmail: m.RecipientEmail,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
