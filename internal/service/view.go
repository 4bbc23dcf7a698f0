package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"drawbit/internal/domain"
)

// 毫秒为单位的时间桶
const (
	msPerMinute = int64(60 * 1000)
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// defaultInitial 是邮箱为空时头像显示的字符
const defaultInitial = "U"

// memberCount 协作未实现，每个白板只有创建者一人
const memberCount = 1

var upper = cases.Upper(language.Und)

// HumanizeAge 把 updatedAt 到 now 的时间差格式化为相对时间。
//
// 天数由毫秒差截断得到，而不是比较日历日期：跨越午夜但相差不足 24 小时的两个时间
// 仍落入小时/分钟桶。差值不超过 1 分钟显示 "Just now"，分钟数向上取整。
func HumanizeAge(updatedAt, now time.Time) string {
	diff := now.Sub(updatedAt).Milliseconds()
	if diff < 0 {
		diff = -diff
	}

	days := diff / msPerDay
	if days > 0 {
		return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
	}
	hours := diff / msPerHour
	if hours > 0 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	}
	if diff <= msPerMinute {
		return "Just now"
	}
	minutes := (diff + msPerMinute - 1) / msPerMinute
	return fmt.Sprintf("%d minutes ago", minutes)
}

// HumanizeISO 解析 ISO-8601 时间戳后调用 HumanizeAge，无法解析时返回 false。
func HumanizeISO(updatedAtISO string, now time.Time) (string, bool) {
	t, err := domain.ParseTimestamp(updatedAtISO)
	if err != nil {
		return "", false
	}
	return HumanizeAge(t, now), true
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// ToInitial 返回邮箱首字符的大写形式，邮箱为空时返回 "U"。
func ToInitial(email string) string {
	if email == "" {
		return defaultInitial
	}
	r, _ := utf8.DecodeRuneInString(email)
	return upper.String(string(r))
}

// ChooseLayout 根据集合是否为空决定仪表盘布局
func ChooseLayout(records []domain.WhiteboardRecord) domain.Layout {
	if len(records) == 0 {
		return domain.LayoutEmptyOnboarding
	}
	return domain.LayoutPopulatedGrid
}

// Project 把持久化记录投影为视图模型，保持原有顺序。
func Project(records []domain.WhiteboardRecord, now time.Time) []domain.WhiteboardViewModel {
	views := make([]domain.WhiteboardViewModel, 0, len(records))
	for _, r := range records {
		age := ""
		if updated, err := r.UpdatedTime(); err != nil {
			logrus.WithField("whiteboard_id", r.ID).WithError(err).Warn("Whiteboard has an unparsable updatedAt, rendering without age")
		} else {
			age = HumanizeAge(updated, now)
		}
		views = append(views, domain.WhiteboardViewModel{
			ID:        r.ID,
			Title:     r.Title,
			UpdatedAt: age,
			Members:   memberCount,
			Starred:   r.Starred,
		})
	}
	return views
}

// BuildDashboard 从记录集合和身份组装完整的仪表盘视图
func BuildDashboard(records []domain.WhiteboardRecord, email string, now time.Time) *domain.DashboardView {
	return &domain.DashboardView{
		Layout:      ChooseLayout(records),
		Email:       email,
		Initial:     ToInitial(email),
		Whiteboards: Project(records, now),
	}
}
