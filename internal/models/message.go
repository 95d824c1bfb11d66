package models

import "time"

// Message is a direct message between exactly two users.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Involves reports whether userID is the sender or recipient.
func (m *Message) Involves(userID string) bool {
	return m.From == userID || m.To == userID
}

// Between reports whether the message was exchanged between a and b.
func (m *Message) Between(a, b string) bool {
	return (m.From == a && m.To == b) || (m.From == b && m.To == a)
}
