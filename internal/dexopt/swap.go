package dexopt

import "droid.dev/instd/internal/config"

// alwaysProvideSwapFile mirrors kAlwaysProvideSwapFile: a build-time
// override this platform never sets.
const alwaysProvideSwapFile = false

// defaultProvideSwapFile mirrors kDefaultProvideSwapFile.
const defaultProvideSwapFile = true

// ShouldUseSwapFile decides whether a swap file should be created for a
// dex2oat invocation: the property override wins if set, otherwise the
// compiled-in default applies, falling back to true on a low-memory
// device when the default itself is false.
func ShouldUseSwapFile(p config.Properties) bool {
	if alwaysProvideSwapFile {
		return true
	}
	if v, ok := p.Get(config.PropDex2oatSwap); ok {
		return v == "true"
	}
	if defaultProvideSwapFile {
		return true
	}
	return config.GetBool(p, config.PropLowRam, false)
}
