// Package fhs provides constant and checked pathname values for the
// well-known directory roots of the on-device storage layout.
package fhs

import "droid.dev/instd/internal/check"

const (
	// Data is the root of internal (non-removable) storage.
	Data = "/data/"
	// DataApp holds installed application code, one directory per package.
	DataApp = Data + "app/"
	// DataUser holds per-user, credential-encrypted (CE) app private data.
	DataUser = Data + "user/"
	// DataUserDe holds per-user, device-encrypted (DE) app private data.
	DataUserDe = Data + "user_de/"
	// DataMedia holds per-user shared/external storage emulation.
	DataMedia = Data + "media/"
	// DalvikCache holds flat-named OAT artifacts keyed by escaped APK path.
	DalvikCache = Data + "dalvik-cache/"
	// ResourceCache holds idmap output files.
	ResourceCache = Data + "resource-cache/"
	// MiscUser holds per-user configuration state such as lock settings.
	MiscUser = Data + "misc/user/"

	// SystemApp holds pre-installed application code.
	SystemApp = "/system/app/"
	// SystemBin holds platform executables, including the AOT toolchain.
	SystemBin = "/system/bin/"

	// AsecRoot holds mounted application-secure-container images.
	AsecRoot = Data + "app-asec/"
)

var (
	// AbsDataApp is [DataApp] as [check.Absolute].
	AbsDataApp = check.MustAbs(DataApp)
	// AbsDataUser is [DataUser] as [check.Absolute].
	AbsDataUser = check.MustAbs(DataUser)
	// AbsDataUserDe is [DataUserDe] as [check.Absolute].
	AbsDataUserDe = check.MustAbs(DataUserDe)
	// AbsDataMedia is [DataMedia] as [check.Absolute].
	AbsDataMedia = check.MustAbs(DataMedia)
	// AbsDalvikCache is [DalvikCache] as [check.Absolute].
	AbsDalvikCache = check.MustAbs(DalvikCache)
	// AbsResourceCache is [ResourceCache] as [check.Absolute].
	AbsResourceCache = check.MustAbs(ResourceCache)
	// AbsMiscUser is [MiscUser] as [check.Absolute].
	AbsMiscUser = check.MustAbs(MiscUser)

	// AbsSystemApp is [SystemApp] as [check.Absolute].
	AbsSystemApp = check.MustAbs(SystemApp)
	// AbsSystemBin is [SystemBin] as [check.Absolute].
	AbsSystemBin = check.MustAbs(SystemBin)

	// AbsAsecRoot is [AsecRoot] as [check.Absolute].
	AbsAsecRoot = check.MustAbs(AsecRoot)
)
