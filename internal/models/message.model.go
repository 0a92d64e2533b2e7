package models

import "time"

// Message has a single server-assigned timestamp instead of created/updated.
type Message struct {
	ID          int       `gorm:"type:integer;primaryKey;autoIncrement" json:"id"`
	SenderID    int       `gorm:"type:integer;not null;index"           json:"sender_id"`
	RecipientID int       `gorm:"type:integer;not null;index"           json:"recipient_id"`
	Content     string    `gorm:"type:text;not null"                    json:"content"`
	Timestamp   time.Time `gorm:"autoCreateTime"                        json:"timestamp"`
}

func (m Message) RecordID() int {
	return m.ID
}

type MessageCreate struct {
	SenderID    int
	RecipientID int
	Content     string
}

func (m MessageCreate) NewRecord() *Message {
	return &Message{
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
	}
}

func (m MessageCreate) References() []Reference {
	return []Reference{
		{Field: "sender_id", ID: m.SenderID},
		{Field: "recipient_id", ID: m.RecipientID},
	}
}
