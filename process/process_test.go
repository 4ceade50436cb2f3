package process_test

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/parse"
	"github.com/jetsetilly/ldb/process"
	"github.com/jetsetilly/ldb/registers"
)

// TestMain lets this test binary re-exec itself as a traceable child: when
// LDB_HELPER_MODE is set the binary behaves as one of a handful of tiny
// fixtures instead of running the test suite, avoiding a dependency on any
// external compiler for the programs under test.
func TestMain(m *testing.M) {
	switch os.Getenv("LDB_HELPER_MODE") {
	case "":
		os.Exit(m.Run())
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	case "echo":
		io.WriteString(os.Stdout, os.Getenv("LDB_HELPER_ECHO"))
		os.Exit(0)
	case "exit42":
		os.Exit(42)
	}
}

func helperCommand(mode string) (string, []string, []string) {
	path, _ := os.Executable()
	return path, []string{"-test.run=^$"}, []string{"LDB_HELPER_MODE=" + mode}
}

func TestLaunchAndWaitExit(t *testing.T) {
	if os.Getenv("LDB_SKIP_PROCESS_IT") != "" {
		t.Skip("skipping ptrace integration test")
	}

	path, args, env := helperCommand("exit42")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := process.Launch(ctx, path, args, true, nil)
	if err != nil {
		t.Skipf("ptrace unavailable in this sandbox: %v", err)
	}

	_ = env // the launched process inherits the test binary's own environment

	ldbtest.ExpectSuccess(t, p.Resume())
	reason, err := p.WaitOnSignal()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, reason.State, process.Exited)
}

func TestReadWriteRegister(t *testing.T) {
	if os.Getenv("LDB_SKIP_PROCESS_IT") != "" {
		t.Skip("skipping ptrace integration test")
	}

	path, args, _ := helperCommand("sleep")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := process.Launch(ctx, path, args, true, nil)
	if err != nil {
		t.Skipf("ptrace unavailable in this sandbox: %v", err)
	}
	defer p.Detach()

	ldbtest.ExpectSuccess(t, p.Registers().WriteByID(registers.Rsi, registers.Value{Uint: 0xcafecafe}))
	got, err := p.Registers().ReadByID(registers.Rsi)
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, got.Uint, uint64(0xcafecafe))
}

// TestReadWriteMemoryRoundTrip exercises ReadMemory/WriteMemory against a
// stopped tracee using the same "[0xNN,...]" literal format an interactive
// front end would send down for a memory-write command, parsed by
// parse.ParseVector rather than spelled out as a byte slice literal.
func TestReadWriteMemoryRoundTrip(t *testing.T) {
	if os.Getenv("LDB_SKIP_PROCESS_IT") != "" {
		t.Skip("skipping ptrace integration test")
	}

	path, args, _ := helperCommand("sleep")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := process.Launch(ctx, path, args, true, nil)
	if err != nil {
		t.Skipf("ptrace unavailable in this sandbox: %v", err)
	}
	defer p.Detach()

	rsp, err := p.Registers().ReadByID(registers.Rsp)
	ldbtest.ExpectSuccess(t, err)

	// well below the current stack pointer: clear of the red zone, and the
	// tracee is killed rather than resumed once this test is done with it.
	target := addr.VirtAddr(rsp.Uint - 4096)

	want, err := parse.ParseVector("[0xca,0xfe,0xba,0xbe]")
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(want), 4)

	ldbtest.ExpectSuccess(t, p.WriteMemory(target, want))
	got, err := p.ReadMemory(target, len(want))
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(got), len(want))
	for i := range want {
		ldbtest.Equate(t, got[i], want[i])
	}
}
