package report

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes the consolidated document as indented JSON,
// byte-identical to what Consolidate persists.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
