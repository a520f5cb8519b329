package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"chem-purchase-assistant/models"
)

type fakeRenderer struct {
	html     string
	selector string
	png      []byte
	err      error
}

func (f *fakeRenderer) PrintPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (f *fakeRenderer) Screenshot(_ context.Context, html, selector string) ([]byte, error) {
	f.html = html
	f.selector = selector
	if f.err != nil {
		return nil, f.err
	}
	return f.png, nil
}

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 5, G: 150, B: 105, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func exportRequest() models.SummaryExportRequest {
	return models.SummaryExportRequest{
		Supplier:     "sigma",
		SupplierName: "Sigma-Aldrich",
		Order: models.PurchaseOrderResult{
			OrderID:    "ORD-SIM-12345",
			Items:      []models.OrderItem{models.TextItem("500g NaCl")},
			TotalPrice: models.NewAmount(42),
		},
	}
}

func TestSummaryExportService_PDF(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{}
	svc := NewSummaryExportService(renderer, nil)

	result, err := svc.Export(t.Context(), exportRequest(), FormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)
	require.Equal(t, "order-summary-ORD-SIM-12345.pdf", result.Filename)
	require.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(renderer.html)))
	require.NoError(t, err)
	require.Equal(t, "Sigma-Aldrich", doc.Find(".supplier").Text())
	require.Equal(t, "¥42.00", doc.Find(".total-price").Text())
	require.Equal(t, "500g NaCl", doc.Find(".order-items li").Text())
}

func TestSummaryExportService_Thumbnail(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{png: solidPNG(t, 900, 600)}
	svc := NewSummaryExportService(renderer, nil)

	result, err := svc.Export(t.Context(), exportRequest(), FormatThumb)
	require.NoError(t, err)
	require.Equal(t, ".order-summary", renderer.selector)
	require.Equal(t, "image/jpeg", result.ContentType)
	require.Equal(t, "order-summary-ORD-SIM-12345-thumb.jpg", result.Filename)

	img, err := imaging.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	require.Equal(t, 300, img.Bounds().Dx())
	require.Equal(t, 200, img.Bounds().Dy())
}

func TestSummaryExportService_PNG(t *testing.T) {
	t.Parallel()

	raw := solidPNG(t, 120, 80)
	svc := NewSummaryExportService(&fakeRenderer{png: raw}, nil)

	result, err := svc.Export(t.Context(), exportRequest(), FormatPNG)
	require.NoError(t, err)
	require.Equal(t, "image/png", result.ContentType)
	require.Equal(t, raw, result.Data)
}

func TestSummaryExportService_Errors(t *testing.T) {
	t.Parallel()

	svc := NewSummaryExportService(&fakeRenderer{err: errors.New("chrome not found")}, nil)

	_, err := svc.Export(t.Context(), exportRequest(), FormatPDF)
	require.EqualError(t, err, "chrome not found")

	_, err = svc.Export(t.Context(), models.SummaryExportRequest{}, FormatPDF)
	require.ErrorIs(t, err, ErrInvalidPurchase)

	_, err = svc.Export(t.Context(), exportRequest(), ExportFormat("gif"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseExportFormat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]ExportFormat{"": FormatPDF, "PDF": FormatPDF, "png": FormatPNG, " thumb ": FormatThumb} {
		got, err := ParseExportFormat(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseExportFormat("svg")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestThumbnail_KeepsSmallImages(t *testing.T) {
	t.Parallel()

	out, err := Thumbnail(solidPNG(t, 100, 50), 300, 60)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 100, img.Bounds().Dx())

	_, err = Thumbnail([]byte("not an image"), 300, 60)
	require.Error(t, err)
}
