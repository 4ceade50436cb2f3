package ldberr_test

import (
	"syscall"
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/ldberr"
)

func TestErrorfCategoryAndMessage(t *testing.T) {
	err := ldberr.Errorf(ldberr.Lookup, "find function", "function %q not found", "main")
	ldbtest.ExpectFailure(t, err)

	cat, ok := ldberr.CategoryOf(err)
	ldbtest.Equate(t, ok, true)
	ldbtest.Equate(t, cat, ldberr.Lookup)
	ldbtest.Equate(t, ldberr.Is(err, ldberr.Lookup), true)
	ldbtest.Equate(t, ldberr.Is(err, ldberr.Format), false)
	ldbtest.Equate(t, err.Error(), `find function: function "main" not found`)
}

func TestErrnoWrapsSyscallError(t *testing.T) {
	err := ldberr.Errno("ptrace attach", syscall.EPERM)
	ldbtest.ExpectFailure(t, err)
	ldbtest.Equate(t, ldberr.Is(err, ldberr.OSError), true)
}

func TestErrnoNilIsNil(t *testing.T) {
	err := ldberr.Errno("ptrace attach", nil)
	ldbtest.ExpectSuccess(t, err)
}

func TestCategoryOfForeignError(t *testing.T) {
	_, ok := ldberr.CategoryOf(syscall.EINVAL)
	ldbtest.Equate(t, ok, false)
}
