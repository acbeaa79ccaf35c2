package constants

// PageSource records where the text of a single PDF page came from.
type PageSource string

// Stable values (they appear in debug logs).
const (
	PageSourceNative PageSource = "NATIVE" // text layer had non-blank content
	PageSourceOCR    PageSource = "OCR"    // rendered and recognized
	PageSourceFailed PageSource = "FAILED" // render or recognition failed
)
