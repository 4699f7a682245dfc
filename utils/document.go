package utils

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for file types the extractor cannot read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Document is the model-ready form of an uploaded file. Either Text is set or
// Data/MIMEType carry the raw bytes for multimodal input.
type Document struct {
	Text     string
	MIMEType string
	Data     []byte
}

// DocumentExtractor extracts text from various document formats
type DocumentExtractor struct {
	supported map[string]string
}

// NewDocumentExtractor creates a new document extractor
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{
		supported: map[string]string{
			".pdf":  "application/pdf",
			".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			".txt":  "text/plain",
		},
	}
}

// IsSupportedFormat checks if the file format is supported
func (e *DocumentExtractor) IsSupportedFormat(filename string) bool {
	_, ok := e.supported[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentType returns the MIME type for a supported file name
func (e *DocumentExtractor) ContentType(filename string) string {
	if ct, ok := e.supported[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Extract converts file content to a Document based on the file extension.
// PDFs are passed through as binary for the model to read.
func (e *DocumentExtractor) Extract(filename string, content []byte) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		if !utf8.Valid(content) {
			return nil, fmt.Errorf("text file is not valid UTF-8")
		}
		return &Document{Text: string(content)}, nil

	case ".pdf":
		if !bytes.HasPrefix(content, []byte("%PDF")) {
			return nil, fmt.Errorf("file is not a PDF document")
		}
		return &Document{MIMEType: e.supported[ext], Data: content}, nil

	case ".docx":
		text, err := extractDocxText(content)
		if err != nil {
			return nil, err
		}
		return &Document{Text: text}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// extractDocxText reads word/document.xml from the DOCX archive and returns
// the run text, one line per paragraph.
func extractDocxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read docx body: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse docx xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("docx contains no text")
	}
	return text, nil
}
