package syscalls_test

import (
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/syscalls"
)

func TestRoundTrip(t *testing.T) {
	id, err := syscalls.NameToID("write")
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, id, int64(1))

	name, err := syscalls.IDToName(1)
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, name, "write")
}

func TestUnknown(t *testing.T) {
	_, err := syscalls.NameToID("not_a_syscall")
	ldbtest.ExpectFailure(t, err)
}
