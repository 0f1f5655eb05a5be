package command

import (
	"errors"
	"log"
	"os"
)

// MustParse parses arguments and hands the result to exit. A help
// request always terminates the process with status 0 before exit is
// consulted; any other error that exit does not itself terminate the
// process for falls through to a fatal log.
func (n *node) MustParse(arguments []string, exit func(error)) {
	err := n.Parse(arguments)
	if fe, ok := err.(FlagError); ok && fe.Success() {
		os.Exit(0)
	}
	if errors.Is(err, ErrHelp) {
		os.Exit(0)
	}
	exit(err)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
