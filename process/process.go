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

// Package process owns the ptrace-based lifecycle of a traced child:
// fork/exec under ptrace (or free-running, for a later Attach), attach to
// an already-running pid, resume/single-step (stepping over any live
// software breakpoint sitting at the current PC first), wait-and-classify
// stops, raw memory access, and first-free allocation of the four hardware
// debug registers shared by breakpoints and watchpoints.
package process

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/breakpoint"
	"github.com/jetsetilly/ldb/ldberr"
	"github.com/jetsetilly/ldb/logger"
	"github.com/jetsetilly/ldb/registers"
	"golang.org/x/sys/unix"
)

// State is a process's position in the lifecycle state machine.
type State int

const (
	Stopped State = iota
	Running
	Exited
	Terminated
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TrapReason classifies why a SIGTRAP stop happened.
type TrapReason int

const (
	TrapNone TrapReason = iota
	TrapSoftwareBreak
	TrapHardwareBreak
	TrapSingleStep
	TrapSyscall
)

// StopReason is the decoded result of WaitOnSignal.
type StopReason struct {
	State      State
	Info       int32 // exit code, or terminating/stopping signal
	Trap       TrapReason
	TrapSiteID int32 // id of the hardware stoppoint that fired, if any
}

// Target is the narrow back-reference Process needs into its owning
// Target, used by WaitOnSignal to reset inline height on every stop.
type Target interface {
	NotifyStop(StopReason)
}

// Process is a single traced child.
type Process struct {
	pid             int
	state           State
	terminateOnEnd  bool
	attached        bool
	regs            *registers.File
	target          Target
	drOwners        [4]int32 // stoppoint id owning each DR slot, 0 = free
	syscallCatching bool

	sites []*breakpoint.Site // software sites Resume must step over at PC

	// lastResumeWasSingleStep tracks whether the most recent PTRACE request
	// was PTRACE_SINGLESTEP, so classifyTrap can tell a deliberate
	// single-step completion from a genuine INT3 hit: both arrive as a
	// plain SIGTRAP with dr6 clear.
	lastResumeWasSingleStep bool
}

// RegisterBreakpointSite records an installed breakpoint site so Resume can
// step over it first if the tracee is currently stopped exactly at its
// address. Hardware sites don't need this (there is no INT3 byte to step
// past), but registering one is harmless; callers only need register
// software sites in practice.
func (p *Process) RegisterBreakpointSite(s *breakpoint.Site) {
	p.sites = append(p.sites, s)
}

// UnregisterBreakpointSite removes a site previously passed to
// RegisterBreakpointSite.
func (p *Process) UnregisterBreakpointSite(s *breakpoint.Site) {
	for i, x := range p.sites {
		if x == s {
			p.sites = append(p.sites[:i], p.sites[i+1:]...)
			return
		}
	}
}

// siteAtPC returns the enabled software site sitting exactly at the
// current PC, if any.
func (p *Process) siteAtPC() *breakpoint.Site {
	rip, err := p.regs.ReadByID(registers.Rip)
	if err != nil {
		return nil
	}
	pc := addr.VirtAddr(rip.Uint)
	for _, s := range p.sites {
		if !s.IsHardware() && s.IsEnabled() && s.Address() == pc {
			return s
		}
	}
	return nil
}

// Pid returns the tracee's process id.
func (p *Process) Pid() int { return p.pid }

// State returns the process's current lifecycle state.
func (p *Process) State() State { return p.state }

// Registers returns the typed register file mirroring the tracee's user
// area as of the last stop.
func (p *Process) Registers() *registers.File { return p.regs }

// SetTarget installs the non-owning back-reference to the owning Target,
// set once both exist.
func (p *Process) SetTarget(t Target) { p.target = t }

// Launch forks and execs path with args, either under ptrace (trace=true,
// is-attached becomes true) or free-running (trace=false, left for a later
// Attach to pick up — see boundary scenario in spec.md §8 of launching a
// long-lived process and attaching to it afterwards). If stdout is non-nil
// the child's stdout is redirected to it. A traced launch's child stops
// itself immediately after a successful exec (via PTRACE_TRACEME, which
// SysProcAttr.Ptrace arranges as part of the same fork/exec the Go runtime
// already performs), giving the caller a chance to install breakpoints
// before anything runs; a failed exec surfaces as an error from cmd.Start
// itself, via the exec-failure pipe os/exec maintains internally.
func Launch(ctx context.Context, path string, args []string, trace bool, stdout *os.File) (*Process, error) {
	procAttr := &syscall.SysProcAttr{Setpgid: true}
	if trace {
		procAttr.Ptrace = true
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.SysProcAttr = procAttr
	if stdout != nil {
		cmd.Stdout = stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, ldberr.Errno("fork/exec", err)
	}
	pid := cmd.Process.Pid

	if !trace {
		p := &Process{pid: pid, state: Running, terminateOnEnd: true, attached: false, regs: registers.NewFile()}
		logger.Logf("process", "launched untraced pid %d from %s", pid, path)
		return p, nil
	}

	// the exec.Cmd machinery already performs PTRACE_TRACEME + the initial
	// exec-stop dance via SysProcAttr.Ptrace; wait for that first stop here.
	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		return nil, ldberr.Errno("waitpid", err)
	}

	p := &Process{pid: pid, state: Stopped, terminateOnEnd: true, attached: true, regs: registers.NewFile()}
	if err := p.readAllRegisters(); err != nil {
		return nil, err
	}

	logger.Logf("process", "launched pid %d from %s", pid, path)
	return p, nil
}

// Attach attaches to an already-running process, leaving it stopped.
func Attach(pid int) (*Process, error) {
	if err := unix.PtraceAttach(pid); err != nil {
		return nil, ldberr.Errno("ptrace attach", err)
	}

	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		return nil, ldberr.Errno("waitpid", err)
	}

	p := &Process{pid: pid, state: Stopped, terminateOnEnd: false, attached: true, regs: registers.NewFile()}
	if err := p.readAllRegisters(); err != nil {
		return nil, err
	}

	logger.Logf("process", "attached to pid %d", pid)
	return p, nil
}

// Detach detaches from the tracee, letting it run free. If p was launched
// (not attached to), the tracee is killed first unless the caller has
// already arranged for it to exit.
func (p *Process) Detach() error {
	if p.terminateOnEnd && p.state != Exited && p.state != Terminated {
		unix.Kill(p.pid, unix.SIGKILL)
		var ws unix.WaitStatus
		unix.Wait4(p.pid, &ws, 0, nil)
		p.state = Terminated
		return nil
	}
	if p.attached {
		if err := unix.PtraceDetach(p.pid); err != nil {
			return ldberr.Errno("ptrace detach", err)
		}
	}
	return nil
}

// Resume continues the tracee until its next stop. If the tracee is
// currently stopped exactly on a live software breakpoint's INT3, that
// byte is disabled, single-stepped over, and re-enabled first, so the
// PTRACE_CONT below can never hand control straight back into the
// breakpoint it (or Target) just stopped on.
func (p *Process) Resume() error {
	if p.state != Stopped {
		return ldberr.Errorf(ldberr.ProcessState, "resume", "process is not stopped")
	}
	if err := p.stepPastBreakpointAtPC(); err != nil {
		return err
	}
	if p.state != Stopped {
		// stepping past the breakpoint already ran the tracee to exit.
		return nil
	}

	sig := 0
	p.lastResumeWasSingleStep = false
	if p.syscallCatching {
		if err := unix.PtraceSyscall(p.pid, sig); err != nil {
			return ldberr.Errno("ptrace syscall", err)
		}
	} else if err := unix.PtraceCont(p.pid, sig); err != nil {
		return ldberr.Errno("ptrace cont", err)
	}
	p.state = Running
	return nil
}

// stepPastBreakpointAtPC is a no-op unless a registered software site sits
// enabled at the current PC, in which case it disables the site, executes
// exactly one instruction, and re-enables the site (unless that single
// step itself ended the tracee).
func (p *Process) stepPastBreakpointAtPC() error {
	site := p.siteAtPC()
	if site == nil {
		return nil
	}
	if err := site.Disable(); err != nil {
		return err
	}
	if err := p.SingleStep(); err != nil {
		return err
	}
	if _, err := p.WaitOnSignal(); err != nil {
		return err
	}
	if p.state != Stopped {
		return nil
	}
	return site.Enable()
}

// SingleStep executes exactly one machine instruction in the tracee.
func (p *Process) SingleStep() error {
	if p.state != Stopped {
		return ldberr.Errorf(ldberr.ProcessState, "single step", "process is not stopped")
	}
	if err := unix.PtraceSingleStep(p.pid); err != nil {
		return ldberr.Errno("ptrace singlestep", err)
	}
	p.lastResumeWasSingleStep = true
	p.state = Running
	return nil
}

// SetSyscallCatching turns PTRACE_SYSCALL tracing on or off for subsequent
// Resume calls.
func (p *Process) SetSyscallCatching(on bool) { p.syscallCatching = on }

// WaitOnSignal blocks until the tracee stops, exits, or is killed by a
// signal, classifies the stop, re-reads the GPRs into the register file, updates dr6-based
// hardware trap attribution, and notifies the owning Target so it can
// reset inline height.
func (p *Process) WaitOnSignal() (StopReason, error) {
	var ws unix.WaitStatus
	_, err := unix.Wait4(p.pid, &ws, 0, nil)
	if err != nil {
		return StopReason{}, ldberr.Errno("waitpid", err)
	}

	reason := StopReason{}

	switch {
	case ws.Exited():
		p.state = Exited
		reason.State = Exited
		reason.Info = int32(ws.ExitStatus())

	case ws.Signaled():
		p.state = Terminated
		reason.State = Terminated
		reason.Info = int32(ws.Signal())

	case ws.Stopped():
		p.state = Stopped
		reason.State = Stopped
		reason.Info = int32(ws.StopSignal())

		if err := p.readAllRegisters(); err != nil {
			return StopReason{}, err
		}

		if ws.StopSignal() == unix.SIGTRAP {
			reason.Trap, reason.TrapSiteID = p.classifyTrap()
			if reason.Trap == TrapSoftwareBreak {
				p.rewindPastBreakpoint()
			}
		}
	}

	if p.target != nil {
		p.target.NotifyStop(reason)
	}
	return reason, nil
}

// classifyTrap inspects DR6, the current PC, and whether the stop followed
// a deliberate single step to decide whether a SIGTRAP stop was a software
// breakpoint, a hardware breakpoint/watchpoint, a single-step completion,
// or a syscall-entry/exit stop. A single-step and a software breakpoint
// both arrive as a plain SIGTRAP with dr6 clear, so lastResumeWasSingleStep
// (set by SingleStep, cleared by Resume's own continue) disambiguates them.
func (p *Process) classifyTrap() (TrapReason, int32) {
	if p.syscallCatching {
		return TrapSyscall, 0
	}

	dr6Info, _ := registers.ByID(registers.Dr6)
	if v, err := p.ReadUserArea(dr6Info.Offset); err == nil {
		p.regs.WriteByID(registers.Dr6, registers.Value{Uint: v})
	}
	dr6, err := p.regs.ReadByID(registers.Dr6)
	if err == nil && dr6.Uint&0xf != 0 {
		for i := 0; i < 4; i++ {
			if dr6.Uint&(1<<uint(i)) != 0 {
				id := p.drOwners[i]
				// clear DR6 so the next stop isn't misattributed
				p.regs.WriteByID(registers.Dr6, registers.Value{Uint: 0})
				p.flushDr(6)
				return TrapHardwareBreak, id
			}
		}
	}

	if p.lastResumeWasSingleStep {
		return TrapSingleStep, 0
	}
	return TrapSoftwareBreak, 0
}

// rewindPastBreakpoint steps the PC back by one byte, landing it back on
// the INT3-replaced instruction's first byte after the trap.
func (p *Process) rewindPastBreakpoint() {
	rip, err := p.regs.ReadByID(registers.Rip)
	if err != nil {
		return
	}
	p.regs.WriteByID(registers.Rip, registers.Value{Uint: rip.Uint - 1})
	p.flushGprs()
}

func (p *Process) readAllRegisters() error {
	var gregs unix.PtraceRegs
	if err := unix.PtraceGetRegs(p.pid, &gregs); err != nil {
		return ldberr.Errno("ptrace getregs", err)
	}
	p.regs.LoadGprs(encodeGprs(gregs))
	return nil
}

func (p *Process) flushGprs() error {
	gregs := decodeGprs(p.regs.GprBytes())
	if err := unix.PtraceSetRegs(p.pid, &gregs); err != nil {
		return ldberr.Errno("ptrace setregs", err)
	}
	return nil
}

// flushDr writes debug register n back to the tracee's user area via
// PTRACE_POKEUSER.
func (p *Process) flushDr(n int) error {
	info, _ := registers.ByID(registerIDForDr(n))
	v, err := p.regs.Read(info)
	if err != nil {
		return err
	}
	return p.WriteUserArea(info.Offset, v.Uint)
}

func registerIDForDr(n int) registers.ID {
	ids := []registers.ID{registers.Dr0, registers.Dr1, registers.Dr2, registers.Dr3, registers.Dr4, registers.Dr5, registers.Dr6, registers.Dr7}
	return ids[n]
}

// WriteUserArea performs a single PTRACE_POKEUSER at the given byte offset
// into struct user. Offset must be 8-byte aligned.
func (p *Process) WriteUserArea(offset int, value uint64) error {
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_POKEUSR, uintptr(p.pid), uintptr(offset), uintptr(value), 0, 0)
	if errno != 0 {
		return ldberr.Errno("ptrace pokeuser", errno)
	}
	return nil
}

// ReadUserArea performs a single PTRACE_PEEKUSER at the given byte offset.
func (p *Process) ReadUserArea(offset int) (uint64, error) {
	v, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_PEEKUSR, uintptr(p.pid), uintptr(offset), 0, 0, 0)
	if errno != 0 {
		return 0, ldberr.Errno("ptrace peekuser", errno)
	}
	return uint64(v), nil
}

// ReadMemory reads n bytes from the tracee at address a via
// /proc/pid/mem, which (unlike PTRACE_PEEKDATA) does not require masking
// software-breakpoint bytes back in one word at a time.
func (p *Process) ReadMemory(a addr.VirtAddr, n int) ([]byte, error) {
	f, err := os.OpenFile(procMemPath(p.pid), os.O_RDONLY, 0)
	if err != nil {
		return nil, ldberr.Errno("open /proc/pid/mem", err)
	}
	defer f.Close()

	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, int64(a)); err != nil {
		return nil, ldberr.Errno("pread", err)
	}
	return buf, nil
}

// WriteMemory writes data to the tracee at address a.
func (p *Process) WriteMemory(a addr.VirtAddr, data []byte) error {
	f, err := os.OpenFile(procMemPath(p.pid), os.O_WRONLY, 0)
	if err != nil {
		return ldberr.Errno("open /proc/pid/mem", err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, int64(a)); err != nil {
		return ldberr.Errno("pwrite", err)
	}
	return nil
}

// ReadMemoryWithoutTraps reads memory and then, in the returned copy only,
// puts back any software breakpoint's original byte within the requested
// range, so disassembly and display never show an INT3 the debugger itself
// planted. Tracee memory is left unchanged.
// restore is called once per byte in [a, a+n) with its planted replacement
// byte, if any, and should return the original byte to show instead.
func (p *Process) ReadMemoryWithoutTraps(a addr.VirtAddr, n int, restore func(addr.VirtAddr, byte) (byte, bool)) ([]byte, error) {
	buf, err := p.ReadMemory(a, n)
	if err != nil {
		return nil, err
	}
	for i := range buf {
		if orig, ok := restore(a+addr.VirtAddr(i), buf[i]); ok {
			buf[i] = orig
		}
	}
	return buf, nil
}

func procMemPath(pid int) string {
	return "/proc/" + itoa(pid) + "/mem"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// ReadAuxv reads the tracee's auxiliary vector, used to compute a
// position-independent executable's load bias from AT_ENTRY.
func (p *Process) ReadAuxv() (map[uint64]uint64, error) {
	data, err := os.ReadFile("/proc/" + itoa(p.pid) + "/auxv")
	if err != nil {
		return nil, ldberr.Errno("read auxv", err)
	}

	out := make(map[uint64]uint64)
	for i := 0; i+16 <= len(data); i += 16 {
		key := leU64(data[i : i+8])
		val := leU64(data[i+8 : i+16])
		if key == 0 {
			break
		}
		out[key] = val
	}
	return out, nil
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

const atEntry = 9

// LoadBias computes the difference between the runtime entry point
// recorded in auxv and entryFileAddr, the ELF header's e_entry.
func (p *Process) LoadBias(entryFileAddr uint64) (int64, error) {
	auxv, err := p.ReadAuxv()
	if err != nil {
		return 0, err
	}
	runtimeEntry, ok := auxv[atEntry]
	if !ok {
		return 0, ldberr.Errorf(ldberr.Lookup, "load bias", "AT_ENTRY missing from auxv")
	}
	return int64(runtimeEntry) - int64(entryFileAddr), nil
}
