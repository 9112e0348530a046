package dto

// ── 消息模块 DTO ──

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
	Content    string `json:"content"     binding:"required,min=1,max=5000"`
}

// MessageResponse 单条消息响应
type MessageResponse struct {
	ID        string     `json:"id"`
	Sender    *UserBrief `json:"sender,omitempty"`
	Receiver  *UserBrief `json:"receiver,omitempty"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"is_read"`
	CreatedAt string     `json:"created_at"`
}
