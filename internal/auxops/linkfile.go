package auxops

import (
	"os"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/instderr"
)

// LinkFile hard-links relativePath, resolved against fromBase and toBase,
// after validating both resulting paths fall under a permitted app-data
// root. It corresponds to link_file.
func (m *Manager) LinkFile(relativePath, fromBase, toBase string) error {
	fromAbs, err := check.NewAbs(fromBase)
	if err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	toAbs, err := check.NewAbs(toBase)
	if err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	fromPath := fromAbs.Append(relativePath)
	toPath := toAbs.Append(relativePath)

	if err := m.apkPathValidator().Check(fromPath); err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	if err := m.apkPathValidator().Check(toPath); err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}

	if err := os.Link(fromPath.String(), toPath.String()); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, toPath.String(), err)
	}
	return nil
}
