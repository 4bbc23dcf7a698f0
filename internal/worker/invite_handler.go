package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"drawbit/internal/tasks"
)

// InviteNotifyHandler 处理协作邀请任务。
// 目前没有协作协议和邮件投递，任务只被记录后丢弃。
type InviteNotifyHandler struct {
	log *logrus.Entry
}

// NewInviteNotifyHandler 创建 Handler 实例
func NewInviteNotifyHandler(log *logrus.Entry) *InviteNotifyHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &InviteNotifyHandler{log: log}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *InviteNotifyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	logCtx := h.log.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
	})

	payload, err := tasks.ParseInviteNotifyTask(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal invite task payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logCtx.WithFields(logrus.Fields{
		"inviter_id":    payload.InviterID,
		"whiteboard_id": payload.WhiteboardID,
		"invitee":       payload.Email,
	}).Info("Invitation recorded; collaboration delivery is not implemented")
	return nil
}
