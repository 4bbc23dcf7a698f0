package domain

import (
	"fmt"
	"strings"
)

// ExportFormat 是画布导出支持的格式
type ExportFormat string

const (
	ExportPNG  ExportFormat = "png"
	ExportJPEG ExportFormat = "jpeg"
	ExportPDF  ExportFormat = "pdf"
)

// ParseExportFormat 解析导出格式，"jpg" 视为 jpeg。
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return ExportPNG, nil
	case "jpeg", "jpg":
		return ExportJPEG, nil
	case "pdf":
		return ExportPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// IsRaster 报告该格式是否直接输出位图
func (f ExportFormat) IsRaster() bool {
	return f == ExportPNG || f == ExportJPEG
}

// ExportFile 是可供下载的导出结果
type ExportFile struct {
	Name        string // 例如 whiteboard.png
	ContentType string
	Data        []byte
}
