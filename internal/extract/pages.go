package extract

import (
	"fmt"

	"github.com/joseph-ayodele/docextract/constants"
)

// pageOutcome is the result of extracting a single PDF page.
type pageOutcome struct {
	Number int // 1-based
	Source constants.PageSource
	Text   string
	Err    error // set when Source is PageSourceFailed
}

func nativePage(n int, text string) pageOutcome {
	return pageOutcome{Number: n, Source: constants.PageSourceNative, Text: text}
}

func ocrPage(n int, text string) pageOutcome {
	return pageOutcome{Number: n, Source: constants.PageSourceOCR, Text: text}
}

func failedPage(n int, err error) pageOutcome {
	return pageOutcome{Number: n, Source: constants.PageSourceFailed, Err: err}
}

// reducePages folds outcomes into per-page text, per-page warnings and the
// OCR page count. Failed pages become a blank line so indices stay aligned.
func reducePages(outcomes []pageOutcome) (pages []string, warnings []string, ocrPages int) {
	pages = make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		switch o.Source {
		case constants.PageSourceNative:
			pages = append(pages, o.Text)
		case constants.PageSourceOCR:
			pages = append(pages, o.Text)
			ocrPages++
		default:
			pages = append(pages, "\n")
			warnings = append(warnings, fmt.Sprintf("OCR failed on page %d: %v", o.Number, o.Err))
		}
	}
	return pages, warnings, ocrPages
}
