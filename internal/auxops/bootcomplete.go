package auxops

import (
	"os"

	"droid.dev/instd/internal/fhs"
	"droid.dev/instd/internal/instderr"
)

// MarkBootComplete removes isa's dalvik-cache ".booting" marker, the flag
// dex2oat checks to decide whether it is still running as part of the
// early-boot compilation pass. It corresponds to mark_boot_complete.
func (m *Manager) MarkBootComplete(isa string) error {
	marker := fhs.AbsDalvikCache.Append(isa, ".booting")
	if err := os.Remove(marker.String()); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, marker.String(), err)
	}
	return nil
}
