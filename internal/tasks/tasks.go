package tasks

import (
	"encoding/json"
	"fmt"
)

// 定义任务类型常量
const (
	TypeInviteNotify = "invite:notify" // 协作邀请通知任务
)

// InviteNotifyPayload 定义了邀请通知任务的数据结构
type InviteNotifyPayload struct {
	InviterID    uint   `json:"inviter_id"`
	WhiteboardID string `json:"whiteboard_id"`
	Email        string `json:"email"`
}

// NewInviteNotifyTask 序列化邀请任务的 payload
func NewInviteNotifyTask(payload InviteNotifyPayload) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invite payload: %w", err)
	}
	return payloadBytes, nil
}

// ParseInviteNotifyTask 反序列化邀请任务的 payload
func ParseInviteNotifyTask(data []byte) (InviteNotifyPayload, error) {
	var payload InviteNotifyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal invite payload: %w", err)
	}
	return payload, nil
}
