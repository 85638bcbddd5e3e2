package cmd

import (
	"os"
	"testing"

	"github.com/oakwood-commons/opx/internal/ui"
)

// TestMain stubs the platform actions so no cmd test can open a real browser
// (site --open) or touch the clipboard.
func TestMain(m *testing.M) {
	restore := ui.StubPlatformActions()
	code := m.Run()
	restore()
	os.Exit(code)
}
