package utils

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills:</w:t></w:r><w:r><w:tab/><w:t>Go, Docker</w:t></w:r></w:p>
  </w:body>
</w:document>`

	doc, err := NewDocumentExtractor().Extract("cv.docx", buildDocx(t, body))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if doc.Text != "Jane Doe\nSkills:\tGo, Docker" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestExtractFormats(t *testing.T) {
	t.Parallel()

	e := NewDocumentExtractor()

	doc, err := e.Extract("cv.TXT", []byte("plain resume"))
	if err != nil || doc.Text != "plain resume" {
		t.Fatalf("txt: got %+v, %v", doc, err)
	}

	doc, err = e.Extract("cv.pdf", []byte("%PDF-1.7 ..."))
	if err != nil || doc.MIMEType != "application/pdf" || len(doc.Data) == 0 {
		t.Fatalf("pdf: got %+v, %v", doc, err)
	}

	if _, err := e.Extract("cv.pdf", []byte("not a pdf")); err == nil {
		t.Fatalf("expected error for fake pdf")
	}

	if _, err := e.Extract("cv.odt", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	if _, err := e.Extract("cv.docx", []byte("PK broken")); err == nil {
		t.Fatalf("expected error for corrupt docx")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	t.Parallel()

	e := NewDocumentExtractor()
	for name, want := range map[string]bool{
		"a.pdf": true, "a.DOCX": true, "a.txt": true, "a.doc": false, "a": false,
	} {
		if got := e.IsSupportedFormat(name); got != want {
			t.Errorf("IsSupportedFormat(%q) = %v, want %v", name, got, want)
		}
	}
}
