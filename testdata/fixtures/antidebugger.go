// Command antidebugger is a test fixture: it calls PTRACE_TRACEME on
// itself, so a second ptrace attach against it must fail with EPERM. It
// exists to exercise process.Attach's handling of an already-traced
// tracee rather than to do anything useful on its own.
package main

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

func main() {
	if err := unix.PtraceTraceme(); err != nil {
		fmt.Println("traceme:", err)
	}
	time.Sleep(5 * time.Second)
}
