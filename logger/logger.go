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

// Package logger is a package level, append-only list of "tag: message"
// lines used for low-volume diagnostic output from the debugger core
// (process launch and attach, the number of compile units parsed, and
// similar events that are too noisy for an error return but too useful to
// discard). Entries are kept until Clear is called.
package logger

import (
	"fmt"
	"io"
	"sync"
)

type entry struct {
	tag string
	msg string
}

var (
	mu      sync.Mutex
	entries []entry
)

// Log appends a tag/message pair to the log.
func Log(tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{tag: tag, msg: msg})
}

// Logf is a convenience wrapper around Log that formats msg.
func Logf(tag, format string, args ...interface{}) {
	Log(tag, fmt.Sprintf(format, args...))
}

// Write writes every entry in the log to w, oldest first.
func Write(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	for _, e := range entries {
		fmt.Fprintf(w, "%s: %s\n", e.tag, e.msg)
	}
}

// Tail writes the last n entries in the log to w. If n is greater than the
// number of entries held, every entry is written. Requesting zero entries
// writes nothing.
func Tail(w io.Writer, n int) {
	mu.Lock()
	defer mu.Unlock()

	if n <= 0 {
		return
	}
	if n > len(entries) {
		n = len(entries)
	}

	for _, e := range entries[len(entries)-n:] {
		fmt.Fprintf(w, "%s: %s\n", e.tag, e.msg)
	}
}

// Clear empties the log. Intended for use by tests.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	entries = nil
}
