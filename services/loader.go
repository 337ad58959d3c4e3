package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"archivechat/models"
	"archivechat/pkg/log"
)

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables.")
	}
	if err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY")); err != nil {
		log.Errorf("Failed to set Unidoc license key: %v. PDF processing will fail.", err)
	}
}

// LoadCorpusFile reads one corpus file and returns its pages of text with
// provenance attached. PDFs yield one PageText per page; a CSV yields one
// per data row, with the row index standing in for the page number.
func LoadCorpusFile(path string) ([]models.PageText, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return loadPDF(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// loadPDF uses UniPDF to extract text page-by-page. Pages are recorded
// 0-indexed; blank pages are skipped.
func loadPDF(path string) ([]models.PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	pages := make([]models.PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d of %s: %w", i, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, models.PageText{Source: source, Page: i - 1, Text: text})
	}
	return pages, nil
}

// loadCSV turns each data row into a pseudo-document of "header: value"
// lines so structured records survive chunking and embedding intact.
func loadCSV(path string) ([]models.PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	source := filepath.Base(path)
	pages := make([]models.PageText, 0, len(records)-1)
	for row, record := range records[1:] {
		var sb strings.Builder
		for i, field := range record {
			if i < len(header) {
				sb.WriteString(header[i])
				sb.WriteString(": ")
			}
			sb.WriteString(field)
			sb.WriteString("\n")
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		pages = append(pages, models.PageText{Source: source, Page: row, Text: text})
	}
	return pages, nil
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".csv":
		return true
	default:
		return false
	}
}
