package models

import "time"

// ChatMessage is a note exchanged in a document's chat room.
type ChatMessage struct {
	ID         int64         `db:"id" json:"id"`
	DocumentID int           `db:"document_id" json:"documentId"`
	SenderID   int           `db:"sender_id" json:"senderId"`
	SenderKind PrincipalKind `db:"sender_kind" json:"senderKind"`
	SenderName string        `db:"sender_name" json:"senderName"`
	Body       string        `db:"body" json:"body"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
}
