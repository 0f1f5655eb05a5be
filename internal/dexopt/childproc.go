package dexopt

// Exit codes returned by the dexopt child process, preserved verbatim so
// the parent can tell exactly which privilege-drop step failed.
const (
	ExitSetgidFailed   = 64
	ExitSetuidFailed   = 65
	ExitCapsetFailed   = 66
	ExitFlockFailed    = 67
	ExitExecFailed     = 68
	ExitSchedPolicyFailed = 70
	ExitPriorityFailed = 71
	ExitInvalidNeeded  = 72
	ExitInvalidNeededChild = 73

	// EnvChildMarker, when set to "1" in the child's environment, tells
	// cmd/instd's entrypoint to run [RunChild] instead of the normal CLI
	// dispatch, before any goroutine has a chance to spawn a second OS
	// thread underneath the privilege-drop sequence.
	EnvChildMarker = "INSTD_DEXOPT_CHILD"
	EnvChildUID    = "INSTD_DEXOPT_UID"
	EnvChildArgv   = "INSTD_DEXOPT_ARGV"
	EnvChildLockFD = "INSTD_DEXOPT_LOCKFD"
	EnvChildBg     = "INSTD_DEXOPT_BG"
)
