package tools

import (
	"io"

	"gopkg.in/yaml.v2"
)

// WriteReport writes the report (a Coverage, a StatementAnalysis,
// or anything else) as YAML.
func WriteReport(w io.Writer, report interface{}) error {
	bs, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}
