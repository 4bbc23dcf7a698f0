package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"drawbit/internal/domain"
	"drawbit/internal/repository"
	"drawbit/internal/tasks"
)

// TaskEnqueuer 是 asynq.Client 中本服务用到的部分
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// BoardService 负责白板记录的读写以及仪表盘/编辑器视图的组装。
// 每次变更都是对 RecordStore 的 读-改-写，并在同一用户的锁内完成。
type BoardService struct {
	stores   repository.RecordStoreFactory
	enqueuer TaskEnqueuer // 可以为 nil，此时邀请只记录日志
	validate *validator.Validate
	locks    *userLocks
	newID    func() (string, error)
}

// NewBoardService 创建 BoardService 实例。
func NewBoardService(stores repository.RecordStoreFactory, enqueuer TaskEnqueuer) *BoardService {
	if stores == nil {
		panic("RecordStoreFactory cannot be nil for BoardService")
	}
	return &BoardService{
		stores:   stores,
		enqueuer: enqueuer,
		validate: validator.New(),
		locks:    newUserLocks(),
		newID:    newWhiteboardID,
	}
}

// Dashboard 读取用户的集合与身份，返回完整的仪表盘视图。
func (s *BoardService) Dashboard(ctx context.Context, userID uint, now time.Time) (*domain.DashboardView, error) {
	logCtx := logrus.WithField("user_id", userID)
	rs := s.stores(userID)

	records, err := rs.LoadAll(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Dashboard: failed to load whiteboards")
		return nil, ErrInternalServer
	}
	email, err := rs.LoadIdentity(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Dashboard: failed to load identity")
		return nil, ErrInternalServer
	}
	return BuildDashboard(records, email, now), nil
}

// Create 校验标题后创建白板，新记录放在集合最前面。
func (s *BoardService) Create(ctx context.Context, userID uint, title string, now time.Time) (*domain.WhiteboardRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "title": title})

	unlock := s.locks.lock(userID)
	defer unlock()

	rs := s.stores(userID)
	records, err := rs.LoadAll(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Create: failed to load whiteboards")
		return nil, ErrInternalServer
	}

	id, err := s.generateUniqueID(records)
	if err != nil {
		logCtx.WithError(err).Error("Create: failed to generate whiteboard id")
		return nil, ErrInternalServer
	}
	record := domain.NewWhiteboardRecord(id, title, now)

	updated := make([]domain.WhiteboardRecord, 0, len(records)+1)
	updated = append(updated, record)
	updated = append(updated, records...)
	if err := rs.SaveAll(ctx, updated); err != nil {
		logCtx.WithError(err).Error("Create: failed to save whiteboards")
		return nil, ErrInternalServer
	}

	logCtx.WithField("whiteboard_id", id).Info("Whiteboard created")
	return &record, nil
}

// Remove 删除指定白板，id 不存在时什么也不做。没有确认步骤，不可恢复。
func (s *BoardService) Remove(ctx context.Context, userID uint, id string) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "whiteboard_id": id})

	unlock := s.locks.lock(userID)
	defer unlock()

	rs := s.stores(userID)
	records, err := rs.LoadAll(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Remove: failed to load whiteboards")
		return ErrInternalServer
	}

	kept := make([]domain.WhiteboardRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		logCtx.Debug("Remove: whiteboard not found, nothing to do")
		return nil
	}
	if err := rs.SaveAll(ctx, kept); err != nil {
		logCtx.WithError(err).Error("Remove: failed to save whiteboards")
		return ErrInternalServer
	}

	logCtx.Info("Whiteboard deleted")
	return nil
}

// ToggleStar 翻转星标并返回更新后的记录；id 不存在时返回 nil, nil。
func (s *BoardService) ToggleStar(ctx context.Context, userID uint, id string) (*domain.WhiteboardRecord, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "whiteboard_id": id})

	unlock := s.locks.lock(userID)
	defer unlock()

	rs := s.stores(userID)
	records, err := rs.LoadAll(ctx)
	if err != nil {
		logCtx.WithError(err).Error("ToggleStar: failed to load whiteboards")
		return nil, ErrInternalServer
	}

	idx := indexOf(records, id)
	if idx < 0 {
		logCtx.Debug("ToggleStar: whiteboard not found, nothing to do")
		return nil, nil
	}
	records[idx].Starred = !records[idx].Starred
	if err := rs.SaveAll(ctx, records); err != nil {
		logCtx.WithError(err).Error("ToggleStar: failed to save whiteboards")
		return nil, ErrInternalServer
	}

	updated := records[idx]
	logCtx.WithField("starred", updated.Starred).Info("Whiteboard star toggled")
	return &updated, nil
}

// Open 返回编辑器头部视图。未知 id 不是错误，标题回退为 "Whiteboard <id>"。
func (s *BoardService) Open(ctx context.Context, userID uint, id string) (*domain.EditorView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "whiteboard_id": id})
	rs := s.stores(userID)

	records, err := rs.LoadAll(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Open: failed to load whiteboards")
		return nil, ErrInternalServer
	}
	email, err := rs.LoadIdentity(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Open: failed to load identity")
		return nil, ErrInternalServer
	}

	title := editorFallbackTitle(id)
	if idx := indexOf(records, id); idx >= 0 {
		title = records[idx].Title
	}
	return &domain.EditorView{
		ID:      id,
		Title:   title,
		Email:   email,
		Initial: ToInitial(email),
	}, nil
}

// Save 只做确认：绘图内容不持久化，updatedAt 也不刷新。
func (s *BoardService) Save(ctx context.Context, userID uint, id string) error {
	logrus.WithFields(logrus.Fields{"user_id": userID, "whiteboard_id": id}).Info("Whiteboard save acknowledged (content is not persisted)")
	return nil
}

// Invite 校验邮箱并投递邀请任务。没有协作协议，worker 只记录日志。
// 投递失败不影响结果。
func (s *BoardService) Invite(ctx context.Context, userID uint, id, email string) error {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "whiteboard_id": id, "invitee": email})

	if s.enqueuer == nil {
		logCtx.Info("Invite accepted, task queue disabled")
		return nil
	}
	payload, err := tasks.NewInviteNotifyTask(tasks.InviteNotifyPayload{
		InviterID:    userID,
		WhiteboardID: id,
		Email:        email,
	})
	if err != nil {
		logCtx.WithError(err).Error("Invite: failed to build task payload")
		return nil
	}
	info, err := s.enqueuer.EnqueueContext(ctx, asynq.NewTask(tasks.TypeInviteNotify, payload), asynq.Queue("low"))
	if err != nil {
		logCtx.WithError(err).Error("Invite: failed to enqueue invite task")
		return nil
	}
	logCtx.WithField("task_id", info.ID).Info("Invite task enqueued")
	return nil
}

// --- 私有辅助函数 ---

// generateUniqueID 生成在集合内唯一的白板 ID
func (s *BoardService) generateUniqueID(records []domain.WhiteboardRecord) (string, error) {
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", err
		}
		if indexOf(records, id) < 0 {
			return id, nil
		}
		logrus.WithField("whiteboard_id", id).Warnf("Generated whiteboard id already exists, retrying (attempt %d)...", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique whiteboard id after %d attempts", maxAttempts)
}

// newWhiteboardID 使用基于时间戳的 UUIDv7
func newWhiteboardID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return "wb-" + u.String(), nil
}

func indexOf(records []domain.WhiteboardRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func editorFallbackTitle(id string) string {
	if id == "" {
		return "Whiteboard New"
	}
	return "Whiteboard " + id
}

// userLocks 为每个用户提供一把互斥锁，保证同一用户的 读-改-写 串行执行。
// 引用计数归零时删除条目，map 只保留正在使用或等待中的用户。
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int // 持有或等待该锁的调用方数量，受 userLocks.mu 保护
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*userLock)}
}

func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
