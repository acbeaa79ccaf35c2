package extract

import (
	"context"

	"github.com/joseph-ayodele/docextract/constants"
)

// unavailableExtractor stands in for a format whose support is switched
// off. It never touches the file.
type unavailableExtractor struct {
	format  constants.DocType
	warning string
}

func (u unavailableExtractor) Extract(context.Context, string, string) Output {
	return warn(u.format, u.warning)
}
