package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"quizify/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// File is one uploaded document.
type File struct {
	Name string
	Data []byte
}

// Extractor turns the bytes of a single PDF into one text entry per page.
type Extractor interface {
	ExtractPages(data []byte) ([]string, error)
}

// PDFExtractor extracts page text with github.com/ledongthuc/pdf.
type PDFExtractor struct{}

func (PDFExtractor) ExtractPages(data []byte) (pages []string, err error) {
	// the pdf package panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}

// Processor accumulates page text across uploaded files in upload order.
type Processor struct {
	extractor Extractor
}

func NewProcessor(extractor Extractor) *Processor {
	if extractor == nil {
		extractor = PDFExtractor{}
	}
	return &Processor{extractor: extractor}
}

// Ingest extracts every page of every file. It stops at the first file that
// cannot be read and returns the pages collected so far together with an
// *models.IngestionError naming that file.
func (p *Processor) Ingest(ctx context.Context, files []File) ([]models.PageText, error) {
	var pages []models.PageText
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if !strings.EqualFold(filepath.Ext(f.Name), ".pdf") {
			return pages, &models.IngestionError{File: f.Name, Err: errors.New("unsupported file format, only PDF is accepted")}
		}

		texts, err := p.extractor.ExtractPages(f.Data)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("Failed to extract pages")
			return pages, &models.IngestionError{File: f.Name, Err: err}
		}
		for i, text := range texts {
			pages = append(pages, models.PageText{
				Source:     f.Name,
				PageNumber: i + 1,
				Text:       strings.ToValidUTF8(text, replacementChar),
			})
		}
		log.Debug().Str("file", f.Name).Int("pages", len(texts)).Msg("Extracted pages")
	}
	log.Info().Msgf("Total pages processed: %d", len(pages))
	return pages, nil
}
