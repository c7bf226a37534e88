package report

import "io"

// Formatter renders a consolidated document to a writer.
type Formatter interface {
	Format(w io.Writer, doc *Document) error
}
