package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Longitud máxima del preview que se guarda por material.
const previewRunes = 500

// ExtractPreview obtiene un fragmento de texto del archivo subido para
// mostrarlo en el detalle del material. Solo PDF y DOCX tienen extracción;
// para PPTX se devuelve vacío.
func ExtractPreview(fileHeader *multipart.FileHeader, ext string) (string, error) {
	var text string
	var err error

	switch strings.ToLower(ext) {
	case ".pdf":
		text, err = extractTextFromPDF(fileHeader)
	case ".docx":
		text, err = extractTextFromDOCX(fileHeader)
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}

	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes), nil
}

func extractTextFromPDF(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("error al leer el PDF: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("no se pudo crear el lector de PDF: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
		if textBuilder.Len() > previewRunes*4 {
			break
		}
	}

	return textBuilder.String(), nil
}

// Un .docx es un zip; el texto vive en word/document.xml dentro de tags <w:t>.
func extractTextFromDOCX(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("el documento no contiene word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var textBuilder strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Local == "p" {
				textBuilder.WriteString(" ")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}
