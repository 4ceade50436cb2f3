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

// Package parse decodes the small literal formats an interactive front
// end would pass down to the debugger core: hex byte vectors of the form
// "[0xNN,0xNN,...]", used for memory-write commands.
package parse

import (
	"strconv"
	"strings"

	"github.com/jetsetilly/ldb/ldberr"
)

// ParseVector parses a literal of the form "[0xNN,0xNN,...]" into its raw
// bytes. Each element must be exactly four characters ("0x" plus two hex
// digits); the literal must end with "]" and have nothing trailing.
func ParseVector(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, ldberr.Errorf(ldberr.Format, "parse vector", "literal must be wrapped in [ ]")
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, nil
	}

	parts := strings.Split(inner, ",")
	out := make([]byte, 0, len(parts))
	for _, p := range parts {
		if len(p) != 4 || !strings.HasPrefix(p, "0x") {
			return nil, ldberr.Errorf(ldberr.Format, "parse vector", "element %q must be exactly 0xNN", p)
		}
		v, err := strconv.ParseUint(p[2:], 16, 8)
		if err != nil {
			return nil, ldberr.Errorf(ldberr.Format, "parse vector", "element %q is not valid hex", p)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
