package http

import (
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"drawbit/internal/domain"
	"drawbit/internal/middleware"
	"drawbit/internal/service"
)

// WhiteboardHandler 封装仪表盘、白板管理和导出相关的 HTTP 处理逻辑
type WhiteboardHandler struct {
	boards  *service.BoardService
	exports *service.ExportService
	now     func() time.Time
}

// NewWhiteboardHandler 创建 WhiteboardHandler 实例
func NewWhiteboardHandler(boards *service.BoardService, exports *service.ExportService) *WhiteboardHandler {
	if boards == nil || exports == nil {
		panic("BoardService and ExportService cannot be nil for WhiteboardHandler")
	}
	return &WhiteboardHandler{boards: boards, exports: exports, now: time.Now}
}

// CreateWhiteboardRequest 定义创建白板请求的结构体
type CreateWhiteboardRequest struct {
	Title string `json:"title"`
}

// InviteRequest 定义邀请请求的结构体
type InviteRequest struct {
	Email string `json:"email"`
}

// Dashboard 返回当前用户的仪表盘视图
func (h *WhiteboardHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.boards.Dashboard(c.Request.Context(), userID, h.now())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, view)
}

// Create 创建白板，响应中带上编辑器地址
func (h *WhiteboardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateWhiteboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateWhiteboard: Invalid input format")
		ValidationErrorResponse(c, "title", service.ErrTitleRequired.Error())
		return
	}

	record, err := h.boards.Create(c.Request.Context(), userID, req.Title, h.now())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	location := "/whiteboard/" + record.ID
	c.Header("Location", location)
	c.JSON(http.StatusCreated, gin.H{
		"whiteboard": record,
		"location":   location,
	})
}

// Open 返回编辑器头部视图
func (h *WhiteboardHandler) Open(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.boards.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, view)
}

// Remove 删除白板并返回刷新后的仪表盘
func (h *WhiteboardHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.boards.Remove(ctx, userID, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	view, err := h.boards.Dashboard(ctx, userID, h.now())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": view})
}

// ToggleStar 翻转星标并返回刷新后的仪表盘；id 不存在时 whiteboard 为 null
func (h *WhiteboardHandler) ToggleStar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	record, err := h.boards.ToggleStar(ctx, userID, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	view, err := h.boards.Dashboard(ctx, userID, h.now())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"whiteboard": record, "dashboard": view})
}

// Save 确认保存，内容不持久化
func (h *WhiteboardHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.boards.Save(c.Request.Context(), userID, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	MessageResponse(c, http.StatusOK, "Whiteboard saved")
}

// Invite 接受邀请请求
func (h *WhiteboardHandler) Invite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, "email", service.ErrInvalidEmail.Error())
		return
	}
	if err := h.boards.Invite(c.Request.Context(), userID, c.Param("id"), req.Email); err != nil {
		HandleServiceError(c, err)
		return
	}
	MessageResponse(c, http.StatusAccepted, "Invitation sent")
}

// Export 把上传的画布导出为 png/jpeg/pdf 并作为附件返回
func (h *WhiteboardHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "whiteboard_id": c.Param("id")})

	format, err := domain.ParseExportFormat(c.PostForm("format"))
	if err != nil {
		logCtx.WithError(err).Warn("Handler.Export: Unsupported format")
		HandleServiceError(c, service.ErrUnsupportedFormat)
		return
	}
	canvas, err := NewUploadedCanvas(c)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.Export: Invalid canvas upload")
		HandleServiceError(c, err)
		return
	}

	file, err := h.exports.Export(c.Request.Context(), canvas, format)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// currentUserID 从上下文取出认证用户 ID，缺失时直接返回 401
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		logrus.WithField("path", c.FullPath()).Warn("Handler: User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}
	return userID, true
}
