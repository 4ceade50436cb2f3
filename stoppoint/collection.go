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

// Package stoppoint implements the generic collection breakpoint sites and
// watchpoints are both kept in: a set keyed by a monotonic id and indexed
// by address, supporting disable-then-remove and region-overlap queries.
package stoppoint

import "github.com/jetsetilly/ldb/addr"

// Item is the minimal interface a stoppoint (breakpoint site or
// watchpoint) must satisfy to live in a Collection.
type Item interface {
	ID() int32
	Address() addr.VirtAddr
	IsEnabled() bool
	SetEnabled(bool)
}

// Collection holds a set of stoppoints of a single concrete type T,
// indexed by id and by address.
type Collection[T Item] struct {
	items []T
}

// New returns an empty collection.
func New[T Item]() *Collection[T] {
	return &Collection[T]{}
}

// Push adds item to the collection.
func (c *Collection[T]) Push(item T) {
	c.items = append(c.items, item)
}

// Size returns the number of stoppoints held.
func (c *Collection[T]) Size() int { return len(c.items) }

// Empty reports whether the collection holds no stoppoints.
func (c *Collection[T]) Empty() bool { return len(c.items) == 0 }

// ContainsID reports whether a stoppoint with the given id exists.
func (c *Collection[T]) ContainsID(id int32) bool {
	_, ok := c.GetByID(id)
	return ok
}

// ContainsAddress reports whether a stoppoint at the given address exists.
func (c *Collection[T]) ContainsAddress(a addr.VirtAddr) bool {
	_, ok := c.GetByAddress(a)
	return ok
}

// EnabledStoppointAtAddress reports whether an enabled stoppoint sits at a.
func (c *Collection[T]) EnabledStoppointAtAddress(a addr.VirtAddr) bool {
	item, ok := c.GetByAddress(a)
	return ok && item.IsEnabled()
}

// GetByID returns the stoppoint with the given id.
func (c *Collection[T]) GetByID(id int32) (T, bool) {
	for _, it := range c.items {
		if it.ID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// GetByAddress returns the stoppoint at the given address.
func (c *Collection[T]) GetByAddress(a addr.VirtAddr) (T, bool) {
	for _, it := range c.items {
		if it.Address() == a {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// RemoveByID disables, then removes, the stoppoint with the given id.
func (c *Collection[T]) RemoveByID(id int32) {
	for i, it := range c.items {
		if it.ID() == id {
			it.SetEnabled(false)
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// RemoveByAddress disables, then removes, the stoppoint at the given
// address.
func (c *Collection[T]) RemoveByAddress(a addr.VirtAddr) {
	for i, it := range c.items {
		if it.Address() == a {
			it.SetEnabled(false)
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// ForEach calls f for every stoppoint in the collection.
func (c *Collection[T]) ForEach(f func(T)) {
	for _, it := range c.items {
		f(it)
	}
}

// GetInRegion returns every stoppoint whose address lies in [low, high).
func (c *Collection[T]) GetInRegion(low, high addr.VirtAddr) []T {
	var out []T
	for _, it := range c.items {
		if it.Address() >= low && it.Address() < high {
			out = append(out, it)
		}
	}
	return out
}
