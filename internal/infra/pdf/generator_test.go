package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

// mediaBox 提取 PDF 第一页的 MediaBox (单位：点)
func mediaBox(t *testing.T, doc []byte) (float64, float64) {
	t.Helper()
	m := regexp.MustCompile(`/MediaBox \[0 0 ([0-9.]+) ([0-9.]+)\]`).FindSubmatch(doc)
	require.NotNil(t, m, "PDF 中应包含 MediaBox")
	w, err := strconv.ParseFloat(string(m[1]), 64)
	require.NoError(t, err)
	h, err := strconv.ParseFloat(string(m[2]), 64)
	require.NoError(t, err)
	return w, h
}

func TestGenerator_PNGPageFollowsAspectRatio(t *testing.T) {
	doc, err := NewGenerator().Generate(encodePNG(t, 200, 100), 210)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	w, h := mediaBox(t, doc)
	assert.InDelta(t, 2.0, w/h, 0.01, "页面宽高比应与图片一致")
	assert.InDelta(t, 210/25.4*72, w, 0.5, "页宽应为 210mm")
}

func TestGenerator_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(50, 150), nil))

	doc, err := NewGenerator().Generate(buf.Bytes(), 100)
	require.NoError(t, err)

	w, h := mediaBox(t, doc)
	assert.InDelta(t, 3.0, h/w, 0.01)
}

func TestGenerator_RejectsUnknownBytes(t *testing.T) {
	_, err := NewGenerator().Generate([]byte("definitely not an image"), 210)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestGenerator_RejectsBadWidth(t *testing.T) {
	_, err := NewGenerator().Generate(encodePNG(t, 10, 10), 0)
	assert.Error(t, err)
}
