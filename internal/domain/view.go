package domain

// Layout 表示仪表盘顶层的两种互斥布局。
type Layout string

const (
	LayoutEmptyOnboarding Layout = "empty_onboarding" // 没有任何白板时的引导页
	LayoutPopulatedGrid   Layout = "populated_grid"   // 白板卡片网格
)

// WhiteboardViewModel 是渲染用的白板投影，不持久化。
type WhiteboardViewModel struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updatedAt"` // 人性化的相对时间，例如 "2 hours ago"
	Members   int    `json:"members"`   // 协作未实现，恒为 1
	Starred   bool   `json:"starred"`
}

// DashboardView 是仪表盘接口返回的完整视图。
type DashboardView struct {
	Layout      Layout                `json:"layout"`
	Email       string                `json:"email"`
	Initial     string                `json:"initial"`
	Whiteboards []WhiteboardViewModel `json:"whiteboards"`
}

// EditorView 是编辑器页面头部所需的数据。
type EditorView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Email   string `json:"email"`
	Initial string `json:"initial"`
}
