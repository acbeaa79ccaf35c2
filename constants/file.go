package constants

import "strings"

// DocType is the detected container type reported in extraction metadata.
type DocType string

const (
	PDF   DocType = "pdf"
	DOCX  DocType = "docx"
	ODT   DocType = "odt"
	IMAGE DocType = "image"
	TXT   DocType = "txt"
	RTF   DocType = "rtf"
)

// DocTypes lists every type the dispatcher can report.
var DocTypes = []DocType{PDF, DOCX, ODT, IMAGE, TXT, RTF}

// extToType maps a normalized extension (no dot, lowercase) to its container type.
var extToType = map[string]DocType{
	"pdf":  PDF,
	"docx": DOCX,
	"odt":  ODT,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"txt":  TXT,
	"rtf":  RTF,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DocTypeForExt resolves an extension such as ".PDF" or "pdf".
func DocTypeForExt(ext string) (DocType, bool) {
	t, ok := extToType[NormalizeExt(ext)]
	return t, ok
}
