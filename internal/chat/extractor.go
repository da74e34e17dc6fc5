package chat

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
	log "github.com/sirupsen/logrus"
)

const (
	MimeTypePDF  = "application/pdf"
	MimeTypeText = "text/plain"
)

// IsSupportedMimeType reports whether attachments of this type can be read.
func IsSupportedMimeType(mimeType string) bool {
	switch mediaType(mimeType) {
	case MimeTypePDF, MimeTypeText:
		return true
	default:
		return false
	}
}

// DocTextExtractor reads plain text out of uploaded meal plans.
// Extract never fails, unreadable input yields an empty string.
type DocTextExtractor struct{}

func (DocTextExtractor) Extract(data []byte, mimeType string) string {
	switch mediaType(mimeType) {
	case MimeTypeText:
		return strings.ToValidUTF8(string(data), "")
	case MimeTypePDF:
		text, err := pdfText(data)
		if err != nil {
			log.Warnf("extract pdf text: %s", err)
			return ""
		}
		return text
	default:
		return ""
	}
}

func pdfText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("pdf reader panic: %v", r)
			text, err = "", nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	textBytes, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(textBytes), nil
}

func mediaType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}
