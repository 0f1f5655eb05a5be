package argv

// PatchoatOptions carries the input needed to build a patchoat invocation.
type PatchoatOptions struct {
	PatchoatPath   string
	InstructionSet string
	InputFD        int
	OutputFD       int
}

// BuildPatchoat constructs the patchoat argv: patched-image-location,
// no-lock, instruction-set, output-oat-fd, input-oat-fd, in that fixed
// order, matching run_patchoat.
func BuildPatchoat(o PatchoatOptions) []string {
	return New(o.PatchoatPath).
		Add("--patched-image-location=/system/framework/boot.art").
		Add("--no-lock-output").
		Addf("--instruction-set=%s", o.InstructionSet).
		Addf("--output-oat-fd=%d", o.OutputFD).
		Addf("--input-oat-fd=%d", o.InputFD).
		Argv()
}

// BuildIdmap constructs the idmap argv: --fd targetApk overlayApk fd,
// matching run_idmap.
func BuildIdmap(idmapPath, targetApk, overlayApk string, idmapFD int) []string {
	return New(idmapPath).
		Add("--fd").
		Add(targetApk).
		Add(overlayApk).
		Addf("%d", idmapFD).
		Argv()
}
