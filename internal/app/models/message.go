package models

import "time"

// Message is a direct message relayed between two live connections.
type Message struct {
	ID           int64     `json:"id" db:"id"`
	SenderID     int64     `json:"senderId" db:"sender_id"`
	ReceiverID   int64     `json:"receiverId" db:"receiver_id"`
	Content      string    `json:"content" db:"content"`
	DatetimeSent time.Time `json:"datetimeSent" db:"datetime_sent"`
}
