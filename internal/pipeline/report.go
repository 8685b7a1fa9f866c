package pipeline

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// WriteReport writes the diagnostic report for res in the given format.
func WriteReport(w io.Writer, format string, res *Result) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return eris.Wrap(enc.Close(), "report: close yaml encoder")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(res), "report: encode json")
	default:
		return eris.Errorf("report: unknown format %q", format)
	}
}
