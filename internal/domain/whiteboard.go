package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// 本地存储中使用的两个固定 key，沿用前端 localStorage 的命名
const (
	WhiteboardsKey = "drawbit-whiteboards" // 白板摘要记录数组
	UserEmailKey   = "user-email"          // 当前用户的显示身份 (邮箱)
)

// DefaultUserEmail 是身份缺失时的回退值
const DefaultUserEmail = "user@example.com"

// WhiteboardTimeLayout 是 UpdatedAt 的存储格式 (ISO-8601, UTC, 毫秒精度)
const WhiteboardTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// WhiteboardRecord 表示一个持久化的白板摘要记录。
// 注意：不包含实际的绘图内容，Content 始终为 null。
type WhiteboardRecord struct {
	ID        string          `json:"id"`        // 创建时生成，不可变
	Title     string          `json:"title"`     // 用户输入的标题，非空
	UpdatedAt string          `json:"updatedAt"` // ISO-8601 字符串，创建时设置，之后不刷新
	Starred   bool            `json:"starred"`   // 是否加星标，默认 false
	Content   json.RawMessage `json:"content"`   // 占位字段，目前总是 null
}

// NewWhiteboardRecord 创建一条新的白板记录，UpdatedAt 取 createdAt 的 UTC 时间。
func NewWhiteboardRecord(id, title string, createdAt time.Time) WhiteboardRecord {
	return WhiteboardRecord{
		ID:        id,
		Title:     title,
		UpdatedAt: createdAt.UTC().Format(WhiteboardTimeLayout),
		Starred:   false,
	}
}

// ParseTimestamp 解析存储中的 ISO-8601 时间戳 (RFC 3339，可带小数秒和时区偏移)
func ParseTimestamp(iso string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, iso)
}

// UpdatedTime 解析 UpdatedAt 字段。
func (r WhiteboardRecord) UpdatedTime() (time.Time, error) {
	t, err := ParseTimestamp(r.UpdatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid updatedAt %q for whiteboard %s: %w", r.UpdatedAt, r.ID, err)
	}
	return t, nil
}
