package config

import "droid.dev/instd/internal/check"

// Config carries every value the daemon needs from its environment:
// on-disk layout roots, child binary locations and the property store.
// It is constructed once at startup and passed down by reference so tests
// can substitute a temporary directory tree and a [MapProperties].
type Config struct {
	// DataRoot is the root of internal storage, normally "/data".
	DataRoot *check.Absolute

	// AsecMountRoot is where ASEC containers are mounted, normally "/mnt/asec".
	AsecMountRoot *check.Absolute

	// Dex2oatPath is the path to the dex2oat compiler binary.
	Dex2oatPath *check.Absolute
	// PatchoatPath is the path to the patchoat relocation binary.
	PatchoatPath *check.Absolute
	// IdmapPath is the path to the idmap overlay resource-mapping binary.
	IdmapPath *check.Absolute
	// CpPath is the path to a coreutils-compatible cp binary.
	CpPath *check.Absolute

	// UpdateCommandsDir holds pending package-data migration files
	// consumed by movefiles, one file per originating installer batch.
	UpdateCommandsDir *check.Absolute

	// Properties is the system property store.
	Properties Properties
}

// Default returns the [Config] used on a production device.
func Default() *Config {
	return &Config{
		DataRoot:          check.MustAbs("/data"),
		AsecMountRoot:     check.MustAbs("/mnt/asec"),
		Dex2oatPath:       check.MustAbs("/system/bin/dex2oat"),
		PatchoatPath:      check.MustAbs("/system/bin/patchoat"),
		IdmapPath:         check.MustAbs("/system/bin/idmap"),
		CpPath:            check.MustAbs("/system/bin/cp"),
		UpdateCommandsDir: check.MustAbs("/data/system/updatecmds"),
		Properties:        FileProperties{Path: "/dev/__properties__/properties.txt"},
	}
}
