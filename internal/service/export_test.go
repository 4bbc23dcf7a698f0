package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"drawbit/internal/domain"
	"drawbit/internal/service"
)

// mockCanvas 是 service.Canvas 的 Mock
type mockCanvas struct {
	mock.Mock
}

func (m *mockCanvas) ShapeIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var ids []string
	if v := args.Get(0); v != nil {
		ids = v.([]string)
	}
	return ids, args.Error(1)
}

func (m *mockCanvas) RenderImage(ctx context.Context, shapeIDs []string, format domain.ExportFormat) ([]byte, error) {
	args := m.Called(ctx, shapeIDs, format)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

// mockDocs 是 service.DocumentGenerator 的 Mock
type mockDocs struct {
	mock.Mock
}

func (m *mockDocs) Generate(image []byte, pageWidth float64) ([]byte, error) {
	args := m.Called(image, pageWidth)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

func TestExportService_EmptyCanvas(t *testing.T) {
	for _, format := range []domain.ExportFormat{domain.ExportPNG, domain.ExportJPEG, domain.ExportPDF} {
		t.Run(string(format), func(t *testing.T) {
			canvas := new(mockCanvas)
			docs := new(mockDocs)
			canvas.On("ShapeIDs", mock.Anything).Return([]string{}, nil).Once()
			svc := service.NewExportService(docs, 0)

			file, err := svc.Export(context.Background(), canvas, format)

			assert.Nil(t, file)
			assert.True(t, errors.Is(err, service.ErrNothingToExport))
			canvas.AssertNotCalled(t, "RenderImage", mock.Anything, mock.Anything, mock.Anything)
			docs.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			canvas.AssertExpectations(t)
		})
	}
}

func TestExportService_Raster(t *testing.T) {
	canvas := new(mockCanvas)
	docs := new(mockDocs)
	ids := []string{"shape:1", "shape:2"}
	canvas.On("ShapeIDs", mock.Anything).Return(ids, nil).Once()
	canvas.On("RenderImage", mock.Anything, ids, domain.ExportJPEG).Return([]byte("jpeg-bytes"), nil).Once()
	svc := service.NewExportService(docs, 0)

	file, err := svc.Export(context.Background(), canvas, domain.ExportJPEG)

	require.NoError(t, err)
	assert.Equal(t, &domain.ExportFile{Name: "whiteboard.jpeg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}, file)
	canvas.AssertExpectations(t)
	docs.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExportService_PDFRendersPNGAndUsesPageWidth(t *testing.T) {
	canvas := new(mockCanvas)
	docs := new(mockDocs)
	ids := []string{"shape:1"}
	canvas.On("ShapeIDs", mock.Anything).Return(ids, nil).Once()
	canvas.On("RenderImage", mock.Anything, ids, domain.ExportPNG).Return([]byte("png-bytes"), nil).Once()
	docs.On("Generate", []byte("png-bytes"), service.DefaultPageWidth).Return([]byte("%PDF-1.3"), nil).Once()
	svc := service.NewExportService(docs, -1)

	file, err := svc.Export(context.Background(), canvas, domain.ExportPDF)

	require.NoError(t, err)
	assert.Equal(t, "whiteboard.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, []byte("%PDF-1.3"), file.Data)
	canvas.AssertExpectations(t)
	docs.AssertExpectations(t)
}

func TestExportService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported format", func(t *testing.T) {
		canvas := new(mockCanvas)
		_, err := service.NewExportService(new(mockDocs), 0).Export(ctx, canvas, domain.ExportFormat("gif"))
		assert.True(t, errors.Is(err, service.ErrUnsupportedFormat))
		canvas.AssertNotCalled(t, "ShapeIDs", mock.Anything)
	})

	t.Run("shape listing fails", func(t *testing.T) {
		canvas := new(mockCanvas)
		boom := errors.New("canvas detached")
		canvas.On("ShapeIDs", mock.Anything).Return(nil, boom).Once()
		_, err := service.NewExportService(new(mockDocs), 0).Export(ctx, canvas, domain.ExportPNG)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("render fails", func(t *testing.T) {
		canvas := new(mockCanvas)
		boom := errors.New("render failed")
		canvas.On("ShapeIDs", mock.Anything).Return([]string{"a"}, nil).Once()
		canvas.On("RenderImage", mock.Anything, []string{"a"}, domain.ExportPNG).Return(nil, boom).Once()
		_, err := service.NewExportService(new(mockDocs), 0).Export(ctx, canvas, domain.ExportPNG)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty image", func(t *testing.T) {
		canvas := new(mockCanvas)
		docs := new(mockDocs)
		canvas.On("ShapeIDs", mock.Anything).Return([]string{"a"}, nil).Once()
		canvas.On("RenderImage", mock.Anything, []string{"a"}, domain.ExportPNG).Return([]byte{}, nil).Once()
		_, err := service.NewExportService(docs, 0).Export(ctx, canvas, domain.ExportPDF)
		assert.True(t, errors.Is(err, service.ErrNothingToExport))
		docs.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("document generation fails", func(t *testing.T) {
		canvas := new(mockCanvas)
		docs := new(mockDocs)
		boom := errors.New("bad image")
		canvas.On("ShapeIDs", mock.Anything).Return([]string{"a"}, nil).Once()
		canvas.On("RenderImage", mock.Anything, []string{"a"}, domain.ExportPNG).Return([]byte("png"), nil).Once()
		docs.On("Generate", []byte("png"), 150.0).Return(nil, boom).Once()
		_, err := service.NewExportService(docs, 150).Export(ctx, canvas, domain.ExportPDF)
		assert.ErrorIs(t, err, boom)
	})
}
