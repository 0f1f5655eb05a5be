package argv

import "strings"

// Dex2oatOptions carries every input needed to build a dex2oat invocation.
type Dex2oatOptions struct {
	Dex2oatPath string

	ZipFD, OatFD, SwapFD int
	InputFileName        string
	OutputFileName       string
	InstructionSet       string

	VMSafeMode     bool
	Debuggable     bool
	PostBootcomplete bool
	UseJit         bool

	ProfileFDs, ReferenceProfileFDs []int

	// Property-derived values; an empty value means the property was unset
	// and its flag is omitted. The ...Ok fields are not read by the builder.
	Xms, XmsOk                     string
	Xmx, XmxOk                     string
	CompilerFilter, CompilerFilterOk string
	Threads, ThreadsOk             string
	IsaVariant, IsaVariantOk       string
	IsaFeatures, IsaFeaturesOk     string
	ExtraFlags                     []string

	AlwaysDebuggable bool
	GenerateDebugInfo bool

	// SkipCompilation forces --compiler-filter=verify-none plus
	// --runtime-arg -Xnorelocate, matching the vold.decrypt early-boot path.
	SkipCompilation bool
}

// BuildDex2oat constructs the dex2oat argv, reproducing the exact
// conditional ordering and the compiler-filter precedence:
// SkipCompilation > VMSafeMode > UseJit > explicit property.
func BuildDex2oat(o Dex2oatOptions) []string {
	b := New(o.Dex2oatPath)

	b.Addf("--zip-fd=%d", o.ZipFD)
	b.Addf("--zip-location=%s", o.InputFileName)
	b.Addf("--oat-fd=%d", o.OatFD)
	b.Addf("--oat-location=%s", o.OutputFileName)
	b.Addf("--instruction-set=%s", o.InstructionSet)
	if o.IsaVariant != "" {
		b.Addf("--instruction-set-variant=%s", o.IsaVariant)
	}
	if o.IsaFeatures != "" {
		b.Addf("--instruction-set-features=%s", o.IsaFeatures)
	}
	if o.Xms != "" {
		b.AddPair("--runtime-arg", "-Xms"+o.Xms)
	}
	if o.Xmx != "" {
		b.AddPair("--runtime-arg", "-Xmx"+o.Xmx)
	}

	haveRelocationSkip := false
	debuggable := o.Debuggable || o.AlwaysDebuggable
	useJit := o.UseJit
	switch {
	case o.SkipCompilation:
		b.Add("--compiler-filter=verify-none")
		haveRelocationSkip = true
	case o.VMSafeMode:
		b.Add("--compiler-filter=interpret-only")
	case useJit:
		b.Add("--compiler-filter=verify-at-runtime")
	case o.CompilerFilter != "":
		b.Addf("--compiler-filter=%s", o.CompilerFilter)
	}

	if o.Threads != "" {
		b.Addf("-j%s", o.Threads)
	}
	if o.SwapFD >= 0 {
		b.Addf("--swap-fd=%d", o.SwapFD)
	}
	if o.GenerateDebugInfo {
		b.Add("--generate-debug-info")
	}
	if debuggable {
		b.Add("--debuggable")
	}
	b.AddAll(o.ExtraFlags)
	if haveRelocationSkip {
		b.AddPair("--runtime-arg", "-Xnorelocate")
	}
	for i := range o.ProfileFDs {
		b.Addf("--profile-file-fd=%d", o.ProfileFDs[i])
		b.Addf("--reference-profile-file-fd=%d", o.ReferenceProfileFDs[i])
	}

	return b.Argv()
}

// SplitDex2oatFlags splits a whitespace-separated dalvik.vm.dex2oat-flags
// property value into individual argv tokens.
func SplitDex2oatFlags(s string) []string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields
	}
	return nil
}
