package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"drawbit/internal/domain"
)

// maxCanvasImageBytes 限制上传位图的大小
const maxCanvasImageBytes = 16 << 20

// ErrInvalidCanvasUpload 表示客户端上传的画布数据无法使用
var ErrInvalidCanvasUpload = errors.New("invalid canvas upload")

// UploadedCanvas 把客户端画布通过 multipart 表单提交的内容适配为 service.Canvas。
// 表单字段：重复的 shape_id 和可选的 image 文件 (客户端渲染好的位图)。
type UploadedCanvas struct {
	shapeIDs []string
	image    []byte
}

// NewUploadedCanvas 从请求表单中读取图形 ID 和位图
func NewUploadedCanvas(c *gin.Context) (*UploadedCanvas, error) {
	canvas := &UploadedCanvas{shapeIDs: c.PostFormArray("shape_id")}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return canvas, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCanvasUpload, err)
	}
	if fileHeader.Size > maxCanvasImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidCanvasUpload, maxCanvasImageBytes)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded image: %w", err)
	}
	defer f.Close()

	canvas.image, err = io.ReadAll(io.LimitReader(f, maxCanvasImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read uploaded image: %w", err)
	}
	return canvas, nil
}

// ShapeIDs 返回表单中提交的图形 ID
func (u *UploadedCanvas) ShapeIDs(ctx context.Context) ([]string, error) {
	return u.shapeIDs, nil
}

// RenderImage 返回上传的位图，位图类型必须与要求的格式一致
func (u *UploadedCanvas) RenderImage(ctx context.Context, shapeIDs []string, format domain.ExportFormat) ([]byte, error) {
	if len(u.image) == 0 {
		return nil, nil
	}
	got := http.DetectContentType(u.image)
	want := "image/" + string(format)
	if got != want {
		return nil, fmt.Errorf("%w: uploaded image is %s, want %s", ErrInvalidCanvasUpload, got, want)
	}
	return u.image, nil
}
