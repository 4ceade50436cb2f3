package parse_test

import (
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/parse"
)

func TestParseVector(t *testing.T) {
	got, err := parse.ParseVector("[0xca,0xfe]")
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(got), 2)
	ldbtest.Equate(t, got[0], byte(0xca))
	ldbtest.Equate(t, got[1], byte(0xfe))
}

func TestParseVectorEmpty(t *testing.T) {
	got, err := parse.ParseVector("[]")
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(got), 0)
}

func TestParseVectorRejectsMalformed(t *testing.T) {
	_, err := parse.ParseVector("0xca,0xfe")
	ldbtest.ExpectFailure(t, err)

	_, err = parse.ParseVector("[0xcaf]")
	ldbtest.ExpectFailure(t, err)
}
