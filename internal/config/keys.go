package config

// Property keys read from the system property store, named after their
// original dalvik.vm/ro.config counterparts.
const (
	PropDex2oatXms            = "dalvik.vm.dex2oat-Xms"
	PropDex2oatXmx            = "dalvik.vm.dex2oat-Xmx"
	PropDex2oatFilter         = "dalvik.vm.dex2oat-filter"
	PropDex2oatThreads        = "dalvik.vm.dex2oat-threads"
	PropBootDex2oatThreads    = "dalvik.vm.boot-dex2oat-threads"
	PropDex2oatFlags          = "dalvik.vm.dex2oat-flags"
	PropDex2oatSwap           = "dalvik.vm.dex2oat-swap"
	PropIsaFeaturesFmt        = "dalvik.vm.isa.%s.features"
	PropIsaVariantFmt         = "dalvik.vm.isa.%s.variant"
	PropAlwaysDebuggable      = "dalvik.vm.always_debuggable"
	PropVoldDecrypt           = "vold.decrypt"
	PropGenerateDebugInfo     = "debug.generate-debug-info"
	PropUseJit                = "debug.usejit"
	PropLowRam                = "ro.config.low_ram"
)
