// Package dexopt orchestrates a single AOT compilation: it resolves the
// output path, opens the fds the compiler needs, forks a child that drops
// to the target app's uid and execs dex2oat or patchoat, and restores the
// input file's timestamps onto the freshly produced artifact.
package dexopt

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"droid.dev/instd/internal/config"
	"droid.dev/instd/internal/dexopt/argv"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
)

// maxApkPathLen mirrors installd's PKG_PATH_MAX-8 guard: apk_path must
// leave room for the longest derived output filename plus the ".swap"
// suffix appended to it.
const maxApkPathLen = 8192 - 8

// Needed mirrors DEXOPT_*_NEEDED: what kind of compilation is required.
type Needed int

const (
	NeedDex2oat Needed = iota + 1
	NeedPatchoat
	NeedSelfPatchoat
)

// Flags mirrors the DEXOPT_* bitset.
type Flags uint32

const (
	FlagPublic Flags = 1 << iota
	FlagSafeMode
	FlagDebuggable
	FlagBootComplete
	FlagUseJit
)

func (f Flags) has(v Flags) bool { return f&v != 0 }

// Request describes one dexopt invocation.
type Request struct {
	ApkPath        string
	UID            idspace.AppID
	UserID         idspace.UserID
	Pkgname        string
	InstructionSet string
	Needed         Needed
	OatDir         string // empty selects the flattened dalvik-cache path
	Flags          Flags
	VolumeUUID     paths.VolumeUUID
	UseProfiles    bool
}

// Orchestrator runs dexopt requests.
type Orchestrator struct {
	Cfg    *config.Config
	Paths  *paths.Resolver
	Msg    elog.Msg
	// SelfPath is the path to this binary, re-exec'd to perform the
	// privilege-drop-then-exec sequence. Defaults to [os.Executable].
	SelfPath string
}

// New returns an [Orchestrator].
func New(cfg *config.Config, r *paths.Resolver, msg elog.Msg) *Orchestrator {
	return &Orchestrator{Cfg: cfg, Paths: r, Msg: msg}
}

func (o *Orchestrator) selfPath() (string, error) {
	if o.SelfPath != "" {
		return o.SelfPath, nil
	}
	return os.Executable()
}

// Run performs req, returning the output path on success. If req.UseProfiles
// is set and no user on the volume has a current profile for the package,
// Run returns successfully without compiling anything.
func (o *Orchestrator) Run(req Request) (string, error) {
	if req.ApkPath == "" || req.InstructionSet == "" {
		return "", instderr.New(instderr.InvalidArgument, fmt.Errorf("dexopt: missing apk path or isa"))
	}

	uid, uerr := idspace.Uid(req.UserID, req.UID)
	if uerr != nil {
		return "", instderr.New(instderr.InvalidArgument, uerr)
	}

	var profileFiles, referenceFiles []*os.File
	if req.UseProfiles {
		profileFiles, referenceFiles = o.gatherProfiles(req.VolumeUUID, req.Pkgname, uid)
		if len(profileFiles) == 0 {
			return "", nil
		}
		defer closeAll(profileFiles)
		defer closeAll(referenceFiles)
	}

	if len(req.ApkPath) >= maxApkPathLen {
		return "", instderr.New(instderr.InvalidArgument, fmt.Errorf("dexopt: apk path %q exceeds maximum length", req.ApkPath))
	}

	outPath := o.outputPath(req)

	var inputFile string
	switch req.Needed {
	case NeedDex2oat:
		inputFile = req.ApkPath
	case NeedPatchoat:
		inputFile = o.oatPathFor(req.ApkPath, req.InstructionSet)
	case NeedSelfPatchoat:
		inputFile = outPath
	default:
		return "", instderr.New(instderr.InvalidArgument, fmt.Errorf("dexopt: invalid dexopt needed %d", req.Needed))
	}

	inputStat, statErr := os.Stat(inputFile)

	inputF, err := os.Open(inputFile)
	if err != nil {
		return "", instderr.NewPath(instderr.FilesystemFailure, inputFile, err)
	}
	defer inputF.Close()

	os.Remove(outPath)
	outF, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", instderr.NewPath(instderr.FilesystemFailure, outPath, err)
	}
	defer func() {
		if outF != nil {
			outF.Close()
		}
	}()

	fail := func(err error) (string, error) {
		outF.Close()
		outF = nil
		os.Remove(outPath)
		return "", err
	}

	mode := os.FileMode(0640)
	if req.Flags.has(FlagPublic) {
		mode = 0644
	}
	if err := outF.Chmod(mode); err != nil {
		return fail(instderr.NewPath(instderr.FilesystemFailure, outPath, err))
	}
	if err := outF.Chown(1000, int(uid)); err != nil {
		return fail(instderr.NewPath(instderr.FilesystemFailure, outPath, err))
	}

	var swapF *os.File
	if ShouldUseSwapFile(o.Cfg.Properties) {
		swapPath := outPath + ".swap"
		os.Remove(swapPath)
		if f, err := os.OpenFile(swapPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600); err != nil {
			o.Msg.Verbosef("dexopt: could not create swap file %s: %v", swapPath, err)
		} else {
			swapF = f
			os.Remove(swapPath)
		}
	}

	extraFiles := []*os.File{inputF, outF}
	inputChildFD, outChildFD := 3, 4
	nextChildFD := 5
	swapChildFD := -1
	if swapF != nil {
		extraFiles = append(extraFiles, swapF)
		swapChildFD = nextChildFD
		nextChildFD++
		defer swapF.Close()
	}

	profileFDs := make([]int, len(profileFiles))
	referenceFDs := make([]int, len(referenceFiles))
	for i := range profileFiles {
		extraFiles = append(extraFiles, profileFiles[i], referenceFiles[i])
		profileFDs[i] = nextChildFD
		referenceFDs[i] = nextChildFD + 1
		nextChildFD += 2
	}

	var argvSlice []string
	switch req.Needed {
	case NeedPatchoat, NeedSelfPatchoat:
		argvSlice = argv.BuildPatchoat(argv.PatchoatOptions{
			PatchoatPath:   o.Cfg.PatchoatPath.String(),
			InstructionSet: req.InstructionSet,
			InputFD:        inputChildFD,
			OutputFD:       outChildFD,
		})
	default:
		opts := o.dex2oatOptions(req, inputChildFD, outChildFD, swapChildFD, inputFile, outPath)
		opts.ProfileFDs, opts.ReferenceProfileFDs = profileFDs, referenceFDs
		argvSlice = argv.BuildDex2oat(opts)
	}

	selfPath, err := o.selfPath()
	if err != nil {
		return fail(instderr.New(instderr.FilesystemFailure, err))
	}

	params := ChildParams{UID: uid, Argv: argvSlice, LockFD: outChildFD, BootComplete: req.Flags.has(FlagBootComplete)}
	cmd := exec.Command(selfPath)
	cmd.ExtraFiles = extraFiles
	cmd.Env = append(os.Environ(), params.EncodeEnv()...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr

	o.Msg.Suspend()
	runErr := cmd.Run()
	o.Msg.Resume()

	if runErr != nil {
		return fail(instderr.NewPath(instderr.ChildFailure, outPath, runErr))
	}

	if statErr == nil {
		atime := inputStat.ModTime()
		if st, ok := inputStat.Sys().(*syscall.Stat_t); ok {
			atime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
		}
		os.Chtimes(outPath, atime, inputStat.ModTime())
	}

	return outPath, nil
}

func (o *Orchestrator) dex2oatOptions(req Request, zipFD, oatFD, swapFD int, inputFile, outPath string) argv.Dex2oatOptions {
	p := o.Cfg.Properties

	voldDecrypt, _ := p.Get(config.PropVoldDecrypt)
	skip := voldDecrypt == "trigger_restart_min_framework" || voldDecrypt == "1"

	threadsKey := config.PropBootDex2oatThreads
	if req.Flags.has(FlagBootComplete) {
		threadsKey = config.PropDex2oatThreads
	}
	threads, _ := p.Get(threadsKey)

	isaFeatures, _ := p.Get(fmt.Sprintf(config.PropIsaFeaturesFmt, req.InstructionSet))
	isaVariant, _ := p.Get(fmt.Sprintf(config.PropIsaVariantFmt, req.InstructionSet))
	filter, _ := p.Get(config.PropDex2oatFilter)
	xms, _ := p.Get(config.PropDex2oatXms)
	xmx, _ := p.Get(config.PropDex2oatXmx)
	flagsProp, _ := p.Get(config.PropDex2oatFlags)

	return argv.Dex2oatOptions{
		Dex2oatPath:      o.Cfg.Dex2oatPath.String(),
		ZipFD:            zipFD,
		OatFD:            oatFD,
		SwapFD:           swapFD,
		InputFileName:    inputFile,
		OutputFileName:   outPath,
		InstructionSet:   req.InstructionSet,
		VMSafeMode:       req.Flags.has(FlagSafeMode),
		Debuggable:       req.Flags.has(FlagDebuggable),
		PostBootcomplete: req.Flags.has(FlagBootComplete),
		UseJit:           req.Flags.has(FlagUseJit),
		Xms:              xms,
		Xmx:              xmx,
		CompilerFilter:   filter,
		Threads:          threads,
		IsaVariant:       isaVariant,
		IsaFeatures:      isaFeatures,
		ExtraFlags:       argv.SplitDex2oatFlags(flagsProp),
		AlwaysDebuggable: config.GetBool(p, config.PropAlwaysDebuggable, false),
		GenerateDebugInfo: config.GetBool(p, config.PropGenerateDebugInfo, false),
		SkipCompilation:  skip,
	}
}

// gatherProfiles opens the current and reference profile files for every
// known user on uuid, mirroring open_profile_files: a user with no
// code_cache, or no existing current profile, is skipped entirely. The
// reference profile is created if missing and chowned to uid so dex2oat
// can merge the current profile into it.
func (o *Orchestrator) gatherProfiles(uuid paths.VolumeUUID, pkgname string, uid uint32) (profiles, references []*os.File) {
	users, err := o.Paths.KnownUsers(uuid)
	if err != nil {
		return nil, nil
	}

	for _, user := range users {
		codeCache := o.Paths.DataUserPackagePath(uuid, user, pkgname).Append("code_cache")
		profilePath := codeCache.Append(pkgname + ".prof")

		pf, err := os.OpenFile(profilePath.String(), os.O_RDWR, 0)
		if err != nil {
			continue
		}

		refPath := codeCache.Append(pkgname + ".prof.ref")
		rf, err := os.OpenFile(refPath.String(), os.O_CREATE|os.O_RDWR, 0600)
		if err != nil {
			pf.Close()
			continue
		}
		if err := rf.Chown(int(uid), int(uid)); err != nil {
			pf.Close()
			rf.Close()
			continue
		}

		profiles = append(profiles, pf)
		references = append(references, rf)
	}
	return profiles, references
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func (o *Orchestrator) outputPath(req Request) string {
	if req.OatDir != "" && req.OatDir[0] != '!' {
		return o.oatDirPathFor(req.OatDir, req.ApkPath, req.InstructionSet)
	}
	return o.Paths.DalvikCachePath(req.InstructionSet, req.ApkPath, ".dex").String()
}

func (o *Orchestrator) oatDirPathFor(oatDir, apkPath, isa string) string {
	base := apkPath[strLastIndex(apkPath, '/')+1:]
	if len(base) > 4 && base[len(base)-4:] == ".apk" {
		base = base[:len(base)-4]
	}
	return oatDir + "/" + isa + "/" + base + ".odex"
}

func (o *Orchestrator) oatPathFor(apkPath, isa string) string {
	dir := apkPath[:strLastIndex(apkPath, '/')+1]
	base := apkPath[strLastIndex(apkPath, '/')+1:]
	if len(base) > 4 && base[len(base)-4:] == ".apk" {
		base = base[:len(base)-4]
	}
	return dir + "oat/" + isa + "/" + base + ".odex"
}

func strLastIndex(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
