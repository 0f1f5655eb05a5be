package movepkg

// cpArgs builds the argv for the coreutils cp invocation move_complete_app
// shells out to, in the exact flag order and meaning used historically:
// -F delete any existing destination first, -p preserve timestamps/owner/
// mode, -R recurse, -P/-d never follow or dereference symlinks.
func cpArgs(cpPath, from, toParent string) []string {
	return []string{cpPath, "-F", "-p", "-R", "-P", "-d", from, toParent}
}
