package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	log "github.com/sirupsen/logrus"

	"github.com/financesaathi/expense-engine/client"
)

// AcquisitionResult is the text-acquisition contract output: raw text plus
// the engine's self-reported 0-100 confidence.
type AcquisitionResult struct {
	Text       string
	Confidence float64
}

// Acquirer turns document bytes into raw text. Any failure is treated
// identically by the pipeline: it falls back to synthetic data, once, with
// no retry.
type Acquirer interface {
	AcquireText(ctx context.Context, data []byte, filename, mediaType string) (*AcquisitionResult, error)
}

// minUsefulTextLen is the threshold below which an extraction result is
// considered noise and the next rung of the ladder is tried.
const minUsefulTextLen = 20

// TextAcquisition implements the acquisition ladder: embedded PDF text, then
// the remote vision model, then local Tesseract. A decoded payment QR is
// appended to the raw text so merchant names inside UPI QRs feed vendor
// detection downstream.
type TextAcquisition struct {
	vision       *client.VisionClient
	tesseract    *client.TesseractClient
	pdfProcessor PDFProcessor
}

func NewTextAcquisition(
	vision *client.VisionClient,
	tesseract *client.TesseractClient,
	pdfProcessor PDFProcessor,
) *TextAcquisition {
	return &TextAcquisition{
		vision:       vision,
		tesseract:    tesseract,
		pdfProcessor: pdfProcessor,
	}
}

func (a *TextAcquisition) AcquireText(ctx context.Context, data []byte, filename, mediaType string) (*AcquisitionResult, error) {
	if mediaType == "application/pdf" {
		return a.acquireFromPDF(data, filename)
	}
	return a.acquireFromImage(ctx, data, filename, mediaType)
}

func (a *TextAcquisition) acquireFromPDF(data []byte, filename string) (*AcquisitionResult, error) {
	text, err := a.pdfProcessor.ExtractText(data)
	if err != nil {
		log.Printf("PDF text extraction failed for %s: %v", filename, err)
	}

	// A real text layer means a vector PDF; trust it fully.
	if len(strings.TrimSpace(text)) >= minUsefulTextLen {
		return &AcquisitionResult{Text: text, Confidence: 100}, nil
	}

	log.Printf("PDF %s has no usable text layer, attempting image-based OCR", filename)

	images, err := a.pdfProcessor.ExtractImages(data)
	if err != nil || len(images) == 0 {
		return nil, fmt.Errorf("failed to extract images from PDF %s: %w", filename, err)
	}

	var combined strings.Builder
	var totalConf float64
	var pageCount int

	for _, img := range images {
		pageText, conf, ocrErr := a.ocrImage(img)
		if ocrErr != nil {
			log.Printf("OCR failed for a page in %s: %v", filename, ocrErr)
			continue
		}
		combined.WriteString(pageText)
		combined.WriteString("\n")
		totalConf += conf
		pageCount++
	}

	if pageCount == 0 || len(strings.TrimSpace(combined.String())) == 0 {
		return nil, fmt.Errorf("no text could be extracted from scanned PDF %s", filename)
	}

	return &AcquisitionResult{
		Text:       combined.String(),
		Confidence: totalConf / float64(pageCount),
	}, nil
}

func (a *TextAcquisition) acquireFromImage(ctx context.Context, data []byte, filename, mediaType string) (*AcquisitionResult, error) {
	qrText := decodePaymentQR(data)

	// Remote vision model first.
	if a.vision != nil && a.vision.Enabled() {
		text, conf, err := a.vision.ExtractText(ctx, data, mediaType)
		if err == nil && len(strings.TrimSpace(text)) >= minUsefulTextLen {
			return &AcquisitionResult{Text: appendQRText(text, qrText), Confidence: conf}, nil
		}
		log.Printf("Vision extraction failed or returned too little for %s: %v. Falling back to Tesseract...", filename, err)
	}

	// Local Tesseract fallback.
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	text, conf, err := a.tesseract.ExtractFromBytes(data, ext)
	if err != nil {
		return nil, fmt.Errorf("image OCR failed: %w", err)
	}
	if len(strings.TrimSpace(text)) == 0 && qrText == "" {
		return nil, fmt.Errorf("no text could be extracted from %s", filename)
	}

	return &AcquisitionResult{Text: appendQRText(text, qrText), Confidence: conf}, nil
}

func (a *TextAcquisition) ocrImage(img image.Image) (string, float64, error) {
	tempFile, err := os.CreateTemp("", "ocr-page-*.png")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if err := png.Encode(tempFile, img); err != nil {
		tempFile.Close()
		return "", 0, fmt.Errorf("failed to encode page image: %w", err)
	}
	tempFile.Close()

	return a.tesseract.ExtractTextAndQuality(tempFile.Name())
}

// decodePaymentQR scans the image for a QR code. Indian invoices often carry
// a UPI payment QR whose payload names the merchant ("pn=..."), which helps
// vendor keyword matching when print quality defeats OCR. Absence of a QR is
// not an error.
func decodePaymentQR(data []byte) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return ""
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return ""
	}

	qrText := result.GetText()
	log.Printf("Payment QR decoded, %d bytes", len(qrText))
	return qrText
}

func appendQRText(text, qrText string) string {
	if qrText == "" {
		return text
	}
	return text + "\n" + qrText
}
