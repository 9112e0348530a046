package repository

import (
	"context"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
)

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListConversation 双向会话记录，按插入顺序返回
	ListConversation(ctx context.Context, userA, userB string, offset, limit int) ([]model.Message, int64, error)
	// MarkRead 仅接收方可标记已读，返回受影响行数
	MarkRead(ctx context.Context, messageID, receiverID string) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepo) ListConversation(ctx context.Context, userA, userB string, offset, limit int) ([]model.Message, int64, error) {
	var msgs []model.Message
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Sender").Preload("Receiver").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, messageID, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("message_id = ? AND receiver_id = ?", messageID, receiverID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
