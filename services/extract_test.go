package services

import (
	"archive/zip"
	"bytes"
	"mime/multipart"
	"strings"
	"testing"
)

func fileHeaderFor(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mw.Close()

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>")
		body.WriteString(p)
		body.WriteString("</w:t></w:r></w:p>")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPreviewDOCX(t *testing.T) {
	fh := fileHeaderFor(t, "apuntes.docx", docxBytes(t, "Hola mundo", "Segundo parrafo"))

	preview, err := ExtractPreview(fh, ".docx")
	if err != nil {
		t.Fatalf("ExtractPreview: %v", err)
	}
	if preview != "Hola mundo Segundo parrafo" {
		t.Errorf("preview = %q", preview)
	}
}

func TestExtractPreviewTruncates(t *testing.T) {
	fh := fileHeaderFor(t, "apuntes.docx", docxBytes(t, strings.Repeat("a", 900)))

	preview, err := ExtractPreview(fh, ".docx")
	if err != nil {
		t.Fatalf("ExtractPreview: %v", err)
	}
	if got := len([]rune(preview)); got != previewRunes {
		t.Errorf("largo del preview = %d, se esperaba %d", got, previewRunes)
	}
}

func TestExtractPreviewPPTX(t *testing.T) {
	fh := fileHeaderFor(t, "diapositivas.pptx", []byte("no importa el contenido"))

	preview, err := ExtractPreview(fh, ".pptx")
	if err != nil {
		t.Fatalf("ExtractPreview: %v", err)
	}
	if preview != "" {
		t.Errorf("preview = %q, se esperaba vacío", preview)
	}
}

func TestExtractPreviewInvalidPDF(t *testing.T) {
	fh := fileHeaderFor(t, "apuntes.pdf", []byte("esto no es un pdf"))

	if _, err := ExtractPreview(fh, ".pdf"); err == nil {
		t.Error("un pdf corrupto debe devolver error")
	}
}

func TestExtractPreviewDOCXWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("otro.xml"); err != nil {
		t.Fatalf("zip create: %v", err)
	}
	zw.Close()
	fh := fileHeaderFor(t, "apuntes.docx", buf.Bytes())

	if _, err := ExtractPreview(fh, ".docx"); err == nil {
		t.Error("un docx sin word/document.xml debe devolver error")
	}
}
