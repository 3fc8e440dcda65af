// Package extract turns uploaded pdf, docx and txt payloads into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

// Supported lists the accepted extensions.
var Supported = []string{"pdf", "docx", "txt"}

var families = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/zip",
	"txt":  "text/plain",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor implements domain.Extractor.
type Extractor struct{}

var _ domain.Extractor = Extractor{}

func New() Extractor { return Extractor{} }

// ExtensionOf returns the lower-case extension of name without the dot.
func ExtensionOf(name string) string {
	return normalizeExt(filepath.Ext(name))
}

func normalizeExt(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if strings.ContainsAny(ext, `./\`) {
		ext = strings.TrimPrefix(filepath.Ext(ext), ".")
	}
	return strings.ToLower(ext)
}

// CheckType fails with ErrUnsupportedFileType unless ext (or a filename)
// names a supported type.
func CheckType(ext string) error {
	e := normalizeExt(ext)
	if _, ok := families[e]; !ok {
		return fmt.Errorf("%w: %q (supported: %s)", domain.ErrUnsupportedFileType, e, strings.Join(Supported, ", "))
	}
	return nil
}

// Extract returns the text of data interpreted as ext. Empty payloads
// give empty text.
func (Extractor) Extract(data []byte, ext string) (string, error) {
	if err := CheckType(ext); err != nil {
		return "", err
	}
	ext = normalizeExt(ext)
	if len(data) == 0 {
		return "", nil
	}
	if err := sniff(data, ext); err != nil {
		return "", err
	}
	switch ext {
	case "pdf":
		return extractPDF(data)
	case "docx":
		return extractDOCX(data)
	default:
		return extractTXT(data)
	}
}

func sniff(data []byte, ext string) error {
	want := families[ext]
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(want) {
			return nil
		}
	}
	return fmt.Errorf("%w: content looks like %s, not %s", domain.ErrExtraction, detected.String(), ext)
}

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: corrupt pdf: %v", domain.ErrExtraction, r)
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrExtraction, err)
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrExtraction, err)
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrExtraction, err)
	}
	return string(out), nil
}

func extractTXT(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", domain.ErrExtraction)
	}
	return string(data), nil
}
