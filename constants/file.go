package constants

import "strings"

// FileFormat names a content-reader capability.
type FileFormat string

const (
	TEXT FileFormat = "TEXT"
	PDF  FileFormat = "PDF"
	DOCX FileFormat = "DOCX"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the reader capability for an extension, or TEXT for
// anything unrecognized (unknown files are attempted as plain text).
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	default:
		return TEXT
	}
}
