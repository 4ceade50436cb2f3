// This file is part of ldb.
//
// ldb is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ldb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ldb.  If not, see <https://www.gnu.org/licenses/>.

// Command ldb launches a program under the debugger core, plants any
// breakpoint given on the command line, and runs to completion (or to the
// first unhandled stop), printing what it saw. It is a thin exerciser of
// the target package, not an interactive front end: a REPL/TUI is out of
// scope for this tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jetsetilly/ldb/breakpoint"
	"github.com/jetsetilly/ldb/logger"
	"github.com/jetsetilly/ldb/process"
	"github.com/jetsetilly/ldb/target"
)

func main() {
	var (
		breakFunc string
		attachPid int
		tailLog   bool
	)

	root := &cobra.Command{
		Use:   "ldb program [args...]",
		Short: "run a program under ptrace control and report its first stop",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(breakFunc, attachPid, tailLog, args)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&breakFunc, "break", "", "function name to break on before running")
	root.Flags().IntVar(&attachPid, "pid", 0, "attach to an already-running pid instead of launching")
	root.Flags().BoolVar(&tailLog, "log", false, "print the last 50 internal log entries after the run")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ldb:", err)
		os.Exit(1)
	}
}

func run(breakFunc string, attachPid int, tailLog bool, args []string) error {
	var tg *target.Target
	var err error

	switch {
	case attachPid != 0:
		if len(args) != 1 {
			return fmt.Errorf("-pid requires exactly the path to the attached process's executable")
		}
		tg, err = target.Attach(attachPid, args[0])
	case len(args) > 0:
		tg, err = target.Launch(context.Background(), args[0], args[1:], true, os.Stdout)
	default:
		return fmt.Errorf("no program given")
	}
	if err != nil {
		return err
	}
	defer tg.Process().Detach()

	if breakFunc != "" {
		if err := plantFunctionBreak(tg, breakFunc); err != nil {
			return err
		}
	}

	if err := tg.Process().Resume(); err != nil {
		return err
	}

	for {
		reason, err := tg.Process().WaitOnSignal()
		if err != nil {
			return err
		}
		switch reason.State {
		case process.Exited:
			fmt.Printf("exited, status %d\n", reason.Info)
		case process.Terminated:
			fmt.Printf("terminated by signal %d\n", reason.Info)
		case process.Stopped:
			reportStop(tg, reason)
		default:
			continue
		}
		if tailLog {
			printLog()
		}
		return nil
	}
}

func plantFunctionBreak(tg *target.Target, name string) error {
	addrs, err := tg.AddressesForFunction(name)
	if err != nil {
		return err
	}
	bp := breakpoint.NewAddressBreakpoint(addrs[0], false)
	return tg.SetBreakpoint(bp)
}

func reportStop(tg *target.Target, reason process.StopReason) {
	if reason.Trap == process.TrapSyscall {
		if name, err := tg.SyscallName(); err == nil {
			fmt.Printf("stopped in syscall %s\n", name)
		} else {
			fmt.Printf("stopped in syscall (unknown number)\n")
		}
		return
	}

	entry, ok, err := tg.LineEntryAtPc()
	if err != nil || !ok {
		fa, ferr := tg.GetPCFileAddress()
		if ferr == nil {
			fmt.Printf("stopped at 0x%x (no line info)\n", fa.Addr)
		} else {
			fmt.Printf("stopped (trap %v)\n", reason.Trap)
		}
		return
	}
	fmt.Printf("stopped at line %d (file index %d)\n", entry.Line, entry.File)

	if pc, err := tg.PC(); err == nil {
		if insns, err := tg.Disassemble(pc, 1); err == nil && len(insns) > 0 {
			fmt.Printf("  %s\n", insns[0].Text)
		}
	}
}

func printLog() {
	logger.Tail(os.Stdout, 50)
}
