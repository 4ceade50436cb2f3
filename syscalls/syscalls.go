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

// Package syscalls is a name<->id table for the x86-64 Linux syscalls a
// syscall-stop formatter needs to name, covering the calls this debugger's
// own process control and its launched fixtures actually make.
package syscalls

import "github.com/jetsetilly/ldb/ldberr"

// table is intentionally small: it covers the syscalls this debugger
// itself uses to control a tracee, plus the handful common enough to show
// up in almost any traced program's early startup.
var table = map[int64]string{
	0:   "read",
	1:   "write",
	2:   "open",
	3:   "close",
	9:   "mmap",
	11:  "munmap",
	12:  "brk",
	13:  "rt_sigaction",
	14:  "rt_sigprocmask",
	21:  "access",
	56:  "clone",
	57:  "fork",
	59:  "execve",
	60:  "exit",
	61:  "wait4",
	62:  "kill",
	101: "ptrace",
	158: "arch_prctl",
	231: "exit_group",
	257: "openat",
}

var byName map[string]int64

func init() {
	byName = make(map[string]int64, len(table))
	for id, name := range table {
		byName[name] = id
	}
}

// NameToID returns the syscall number for the given name.
func NameToID(name string) (int64, error) {
	id, ok := byName[name]
	if !ok {
		return 0, ldberr.Errorf(ldberr.Lookup, "syscall name to id", "unknown syscall %q", name)
	}
	return id, nil
}

// IDToName returns the name of the given syscall number.
func IDToName(id int64) (string, error) {
	name, ok := table[id]
	if !ok {
		return "", ldberr.Errorf(ldberr.Lookup, "syscall id to name", "unknown syscall number %d", id)
	}
	return name, nil
}
