// Package codec holds the JSON configuration shared by graph documents, submission
// payloads and manifests.
package codec

import (
	"github.com/bytedance/sonic"
)

// JSON decodes numbers as json.Number so large seeds survive a decode/encode cycle
// untouched, and sorts map keys so encoded documents are stable.
var JSON = sonic.Config{
	UseNumber:   true,
	SortMapKeys: true,
	CopyString:  true,
}.Froze()

// Indent is the indentation used for files meant to be read by people.
const Indent = "  "

// MarshalIndent encodes v the way result files are written to disk.
func MarshalIndent(v any) ([]byte, error) {
	return JSON.MarshalIndent(v, "", Indent)
}
