package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarkdownFormatter renders the consolidated document as GitHub-flavored
// markdown, designed for job summaries and PR comments.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, doc *Document) error {
	fmt.Fprintf(w, "## Consolidated security scan report\n\n")

	fmt.Fprintf(w, "| Category | Status |\n")
	fmt.Fprintf(w, "|----------|--------|\n")
	for _, cs := range doc.Statuses() {
		fmt.Fprintf(w, "| %s | %s |\n", cs.Category, statusLabel(cs.Status))
	}
	fmt.Fprintf(w, "\n")

	f.printCategory(w, "Secrets", doc.Secrets)
	f.printCategory(w, "Vulnerabilities", doc.Vulnerabilities)
	return nil
}

func (f *MarkdownFormatter) printCategory(w io.Writer, title string, raw json.RawMessage) {
	if rawStatus(raw) != "ok" {
		return
	}
	fmt.Fprintf(w, "### %s\n\n", title)

	pretty, err := prettyJSON(raw)
	if err != nil {
		pretty = raw
	}
	fmt.Fprintf(w, "```json\n%s\n```\n\n", pretty)
}

func statusLabel(status string) string {
	switch status {
	case "ok":
		return ":white_check_mark: data available"
	case "not run":
		return ":white_circle: not run"
	case "decode failure":
		return ":red_circle: decode failure"
	default:
		return status
	}
}

func prettyJSON(raw json.RawMessage) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
