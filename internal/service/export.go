package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"drawbit/internal/domain"
)

// DefaultPageWidth 是 PDF 导出的固定页宽 (毫米，A4 宽度)
const DefaultPageWidth = 210.0

// Canvas 是嵌入式绘图画布暴露的能力
type Canvas interface {
	// ShapeIDs 返回当前页面上所有图形的 ID
	ShapeIDs(ctx context.Context) ([]string, error)
	// RenderImage 把给定图形渲染为位图
	RenderImage(ctx context.Context, shapeIDs []string, format domain.ExportFormat) ([]byte, error)
}

// DocumentGenerator 把位图嵌入单页文档
type DocumentGenerator interface {
	Generate(image []byte, pageWidth float64) ([]byte, error)
}

// ExportService 把画布内容转换为可下载文件。无内部状态。
type ExportService struct {
	docs      DocumentGenerator
	pageWidth float64
}

// NewExportService 创建 ExportService，pageWidth <= 0 时使用 DefaultPageWidth
func NewExportService(docs DocumentGenerator, pageWidth float64) *ExportService {
	if docs == nil {
		panic("DocumentGenerator cannot be nil for ExportService")
	}
	if pageWidth <= 0 {
		pageWidth = DefaultPageWidth
	}
	return &ExportService{docs: docs, pageWidth: pageWidth}
}

// Export 导出画布。画布为空时返回 ErrNothingToExport 且不生成任何文件；
// 画布和文档生成器的错误原样包装返回，不重试。
func (s *ExportService) Export(ctx context.Context, canvas Canvas, format domain.ExportFormat) (*domain.ExportFile, error) {
	if format != domain.ExportPDF && !format.IsRaster() {
		return nil, ErrUnsupportedFormat
	}
	logCtx := logrus.WithField("format", format)

	shapeIDs, err := canvas.ShapeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read canvas shapes: %w", err)
	}
	if len(shapeIDs) == 0 {
		logCtx.Info("Export aborted: canvas has no shapes")
		return nil, ErrNothingToExport
	}

	// PDF 先渲染成 PNG 再嵌入文档
	renderFormat := format
	if format == domain.ExportPDF {
		renderFormat = domain.ExportPNG
	}
	image, err := canvas.RenderImage(ctx, shapeIDs, renderFormat)
	if err != nil {
		return nil, fmt.Errorf("render canvas: %w", err)
	}
	if len(image) == 0 {
		logCtx.Warn("Export aborted: canvas rendered an empty image")
		return nil, ErrNothingToExport
	}

	if format == domain.ExportPDF {
		doc, err := s.docs.Generate(image, s.pageWidth)
		if err != nil {
			return nil, fmt.Errorf("generate pdf: %w", err)
		}
		logCtx.WithField("shapes", len(shapeIDs)).Info("Canvas exported")
		return &domain.ExportFile{Name: "whiteboard.pdf", ContentType: "application/pdf", Data: doc}, nil
	}

	logCtx.WithField("shapes", len(shapeIDs)).Info("Canvas exported")
	return &domain.ExportFile{
		Name:        "whiteboard." + string(format),
		ContentType: "image/" + string(format),
		Data:        image,
	}, nil
}
