package extractor

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

const (
	// DPI used when rasterizing a page for OCR.
	ocrRenderDPI = 300.0

	// Marker prepended to OCR output so downstream consumers can tell
	// diagram-derived text apart from native page text.
	ocrMarker = "\n[OCR DIAGRAM TEXT]: "
)

// PageText is the extraction output for a single non-empty PDF page.
type PageText struct {
	Text   string `json:"text"`
	Page   int    `json:"page"`   // 1-based
	Source string `json:"source"` // base filename of the PDF
}

// Extractor turns a PDF file into page-tagged text, with an optional OCR
// pass over rasterized page content.
type Extractor struct {
	ocrLanguages []string
}

func ProvideExtractor(ocrLanguages string) *Extractor {
	langs := strings.Split(ocrLanguages, "+")
	if len(langs) == 1 && langs[0] == "" {
		langs = []string{"eng"}
	}
	return &Extractor{ocrLanguages: langs}
}

// Extract returns one PageText per page that has non-empty text. Pages whose
// text is empty or whitespace-only are dropped. When useOCR is set, each page
// is rendered at 300 DPI and run through tesseract; recognized text is
// appended to the page text under the OCR marker.
func (e *Extractor) Extract(ctx context.Context, pdfPath string, useOCR bool) ([]PageText, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var ocr *gosseract.Client
	if useOCR {
		ocr = gosseract.NewClient()
		defer ocr.Close()
		if err := ocr.SetLanguage(e.ocrLanguages...); err != nil {
			return nil, err
		}
	}

	source := filepath.Base(pdfPath)
	var pages []PageText
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.Text(i)
		if err != nil {
			return nil, err
		}

		if useOCR {
			ocrText, err := e.ocrPage(doc, ocr, i)
			if err != nil {
				// A failed OCR pass degrades to native text only.
				logger.Log.Warn("OCR pass failed for page",
					zap.String("pdf", source), zap.Int("page", i+1), zap.Error(err))
			} else if strings.TrimSpace(ocrText) != "" {
				text += ocrMarker + ocrText
			}
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, PageText{Text: text, Page: i + 1, Source: source})
	}

	return pages, nil
}

func (e *Extractor) ocrPage(doc *fitz.Document, ocr *gosseract.Client, page int) (string, error) {
	img, err := doc.ImageDPI(page, ocrRenderDPI)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	if err := ocr.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}

	return ocr.Text()
}
