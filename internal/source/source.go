// Package source loads novel text from the supported input formats.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"novelcast/internal/models"
	"novelcast/internal/textnorm"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// Load reads the file at path and returns its raw text. Plain text files
// go through the candidate-encoding decoder; other formats are extracted
// with their respective readers.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return textnorm.DecodeFile(path)
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	case ".xlsx":
		return loadXLSX(path)
	case ".ods":
		return loadODS(path)
	default:
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

func loadPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, strings.TrimSpace(pageText))
		}
	}
	return strings.Join(pages, models.ParagraphSeparator), nil
}

func loadDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return r.Editable().GetContent(), nil
}

// loadXLSX joins all cell text of every sheet; some novel archives arrive
// as one-column spreadsheets with a paragraph per row.
func loadXLSX(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	for _, sheet := range f.Sheets {
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				if v := strings.TrimSpace(cell.String()); v != "" {
					cells = append(cells, v)
				}
			}
			if len(cells) > 0 {
				paragraphs = append(paragraphs, strings.Join(cells, "\t"))
			}
		}
	}
	return strings.Join(paragraphs, models.ParagraphSeparator), nil
}

func loadODS(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var paragraphs []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		for _, row := range rows {
			var cells []string
			for _, cell := range row {
				if v := strings.TrimSpace(cell); v != "" {
					cells = append(cells, v)
				}
			}
			if len(cells) > 0 {
				paragraphs = append(paragraphs, strings.Join(cells, "\t"))
			}
		}
	}
	return strings.Join(paragraphs, models.ParagraphSeparator), nil
}
