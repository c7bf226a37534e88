// Package report merges raw per-tool output files into one consolidated
// document and renders it as JSON, Markdown, or HTML. Raw files are read
// only; the consolidated file is replaced atomically or not at all.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Raw report filenames the consolidator knows how to pick up.
const (
	secretsFile = "secrets_report.json"
	vulnFile    = "vulnerability_report.json"
	tlsFile     = "tls_report.json"
)

// Placeholder documents embedded when a category has no usable data.
var (
	placeholderNotRun      = json.RawMessage(`{"status": "not run"}`)
	placeholderDecodeError = json.RawMessage(`{"error": "decode failure"}`)
)

// Document is the consolidated report: exactly two top-level keys, each
// holding either the embedded raw tool output or a placeholder.
type Document struct {
	Secrets         json.RawMessage `json:"secrets"`
	Vulnerabilities json.RawMessage `json:"vulnerabilities"`
}

// CategoryStatus summarizes one category for the human-readable renderers.
type CategoryStatus struct {
	Category string
	Status   string // "ok", "not run", or "decode failure"
}

// Statuses reports each category's state in a fixed order.
func (d *Document) Statuses() []CategoryStatus {
	return []CategoryStatus{
		{Category: "secrets", Status: rawStatus(d.Secrets)},
		{Category: "vulnerabilities", Status: rawStatus(d.Vulnerabilities)},
	}
}

func rawStatus(raw json.RawMessage) string {
	switch {
	case bytes.Equal(raw, placeholderNotRun):
		return "not run"
	case bytes.Equal(raw, placeholderDecodeError):
		return "decode failure"
	default:
		return "ok"
	}
}

// Consolidator merges the raw tool reports found in Dir.
type Consolidator struct {
	// Dir is the directory holding the raw tool report files, typically
	// a run-scoped report directory.
	Dir string

	Logger *slog.Logger
}

// NewConsolidator returns a Consolidator reading raw files from dir.
func NewConsolidator(dir string, logger *slog.Logger) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{Dir: dir, Logger: logger}
}

// Build reads whatever raw files exist and assembles the consolidated
// document. Missing files become "not run" placeholders, unparseable
// ones "decode failure" placeholders; Build itself never fails.
func (c *Consolidator) Build() *Document {
	doc := &Document{
		Secrets:         c.loadCategory(secretsFile),
		Vulnerabilities: c.loadCategory(vulnFile),
	}
	// The two URL tools share the vulnerabilities category; the TLS
	// audit feeds it only when the web scan produced nothing.
	if bytes.Equal(doc.Vulnerabilities, placeholderNotRun) {
		doc.Vulnerabilities = c.loadCategory(tlsFile)
	}
	return doc
}

// loadCategory reads one raw report file into an embeddable raw message.
func (c *Consolidator) loadCategory(name string) json.RawMessage {
	path := filepath.Join(c.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.Logger.Warn("reading raw report failed", "path", path, "error", err)
		}
		return placeholderNotRun
	}
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	// Some scanners emit JSON lines rather than one document; fold those
	// into an array before giving up on the file.
	if arr, ok := foldJSONLines(data); ok {
		return arr
	}
	c.Logger.Error("raw report is not valid JSON", "path", path)
	return placeholderDecodeError
}

// foldJSONLines converts a JSON-lines payload into a single JSON array.
// Returns false unless every non-empty line is itself valid JSON.
func foldJSONLines(data []byte) (json.RawMessage, bool) {
	var docs []json.RawMessage
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			return nil, false
		}
		docs = append(docs, json.RawMessage(line))
	}
	if len(docs) == 0 {
		return nil, false
	}
	out, err := json.Marshal(docs)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Consolidate builds the document and writes it to outputPath, fully
// replacing any prior content. The write is atomic: on any error the
// previous consolidated report, if one exists, is left untouched.
func (c *Consolidator) Consolidate(outputPath string) error {
	doc := c.Build()
	if err := WriteFile(doc, outputPath); err != nil {
		c.Logger.Error("writing consolidated report failed", "path", outputPath, "error", err)
		return err
	}
	c.Logger.Info("consolidated report saved", "path", outputPath)
	return nil
}

// WriteFile serializes doc and atomically replaces outputPath with it.
func WriteFile(doc *Document, outputPath string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding consolidated report: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".consolidated-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return fmt.Errorf("replacing %s: %w", outputPath, err)
	}
	return nil
}
