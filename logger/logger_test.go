package logger_test

import (
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/logger"
)

func TestLogger(t *testing.T) {
	logger.Clear()
	tw := &ldbtest.Writer{}

	logger.Write(tw)
	ldbtest.Equate(t, tw.Compare(""), true)

	logger.Log("test", "this is a test")
	logger.Write(tw)
	ldbtest.Equate(t, tw.Compare("test: this is a test\n"), true)

	tw.Clear()

	logger.Log("test2", "this is another test")
	logger.Write(tw)
	ldbtest.Equate(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	// asking for too many entries in a Tail() should be okay
	tw.Clear()
	logger.Tail(tw, 100)
	ldbtest.Equate(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	// asking for exactly the correct number of entries is okay
	tw.Clear()
	logger.Tail(tw, 2)
	ldbtest.Equate(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	// asking for fewer entries is okay too
	tw.Clear()
	logger.Tail(tw, 1)
	ldbtest.Equate(t, tw.Compare("test2: this is another test\n"), true)

	// and no entries
	tw.Clear()
	logger.Tail(tw, 0)
	ldbtest.Equate(t, tw.Compare(""), true)
}

func TestLogf(t *testing.T) {
	logger.Clear()
	tw := &ldbtest.Writer{}

	logger.Logf("tag", "value=%d", 42)
	logger.Write(tw)
	ldbtest.Equate(t, tw.Compare("tag: value=42\n"), true)
}
