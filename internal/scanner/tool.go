// Package scanner orchestrates target resolution, tool applicability
// matching, and isolated invocation of external scanning tools.
package scanner

import (
	"context"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

// Tool is the interface every external scanner adapter must implement.
type Tool interface {
	// ID is the stable identifier used in tool selections.
	ID() types.ToolID

	// Category is the consolidated-report section this tool feeds.
	Category() types.Category

	// Applicable reports whether the tool can run against the target.
	// When false, the returned reason explains the skip.
	Applicable(t *Target) (bool, string)

	// Run invokes the external tool against the target, writing its raw
	// report under dir. Run never returns an error: missing binaries,
	// non-zero exits, and timeouts are all recorded on the ToolResult so
	// one tool's trouble cannot abort its siblings.
	Run(ctx context.Context, t *Target, dir string) ToolResult
}
