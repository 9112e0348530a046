package model

import "time"

// Message 消息表 — 对应 messages（按插入顺序读取的简单消息日志，无送达保证）
type Message struct {
	MessageID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SenderID   string    `gorm:"type:uuid;not null"                             json:"sender_id"`
	ReceiverID string    `gorm:"type:uuid;not null"                             json:"receiver_id"`
	Content    string    `gorm:"type:text;not null"                             json:"content"`
	IsRead     bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Sender   *User `gorm:"foreignKey:SenderID;references:UserID"   json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;references:UserID" json:"receiver,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }
