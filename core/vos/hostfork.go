package vos

import (
	"fmt"
	"io"
	"os"
)

// ForkArg is the hidden first argument that marks a re-executed child.
const ForkArg = "__fork"

const payloadFd = 3

// IsForkedChild reports whether the running process was started by
// HostOS.Fork.
func IsForkedChild() bool {
	return len(os.Args) > 1 && os.Args[1] == ForkArg
}

// RunForkedChild reads the payload sent by HostOS.Fork and runs the
// registered ChildMain. The result should be passed to os.Exit.
func RunForkedChild() int {
	main, err := registeredChildMain()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	payloadFile := os.NewFile(payloadFd, "payload")
	if payloadFile == nil {
		fmt.Fprintln(os.Stderr, "vos: forked child has no payload descriptor")
		return 1
	}
	payload, err := io.ReadAll(payloadFile)
	payloadFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vos: reading payload: %v\n", err)
		return 1
	}

	return main(NewHostOS(), payload)
}
