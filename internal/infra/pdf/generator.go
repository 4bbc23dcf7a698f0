// Package pdf 使用 go-pdf/fpdf 把画布位图嵌入单页 PDF。
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-pdf/fpdf"
)

const imageName = "whiteboard"

// ErrUnsupportedImage 表示输入既不是 PNG 也不是 JPEG
var ErrUnsupportedImage = errors.New("pdf: unsupported image type")

// Generator 实现 service.DocumentGenerator
type Generator struct{}

// NewGenerator 创建 Generator
func NewGenerator() *Generator { return &Generator{} }

// Generate 生成单页 PDF：页宽固定为 pageWidth (毫米)，页高按图片宽高比计算，图片铺满整页。
func (g *Generator) Generate(image []byte, pageWidth float64) ([]byte, error) {
	if pageWidth <= 0 {
		return nil, fmt.Errorf("pdf: page width must be positive, got %v", pageWidth)
	}
	imageType, err := detectImageType(image)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	opts := fpdf.ImageOptions{ImageType: imageType}
	info := doc.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(image))
	if doc.Err() {
		return nil, fmt.Errorf("pdf: register image: %w", doc.Error())
	}
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		return nil, fmt.Errorf("pdf: image has no dimensions")
	}

	pageHeight := info.Height() * pageWidth / info.Width()
	doc.AddPageFormat("P", fpdf.SizeType{Wd: pageWidth, Ht: pageHeight})
	doc.ImageOptions(imageName, 0, 0, pageWidth, pageHeight, false, opts, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

func detectImageType(image []byte) (string, error) {
	switch http.DetectContentType(image) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	}
	return "", ErrUnsupportedImage
}
