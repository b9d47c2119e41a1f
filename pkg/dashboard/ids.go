package dashboard

import "fmt"

// TempIDAllocator mints client-local ids. Values are strictly negative and
// never repeat until Reset.
type TempIDAllocator[T ~int] struct {
	start T
	step  T
	next  T
}

// NewTabIDAllocator starts at -2 and steps by -2, leaving room for the
// second id CreateNewTab uses when it bootstraps two tabs.
func NewTabIDAllocator() *TempIDAllocator[TabID] {
	return &TempIDAllocator[TabID]{start: -2, step: -2, next: -2}
}

// NewDashCardIDAllocator starts at -1 and steps by -1.
func NewDashCardIDAllocator() *TempIDAllocator[DashCardID] {
	return &TempIDAllocator[DashCardID]{start: -1, step: -1, next: -1}
}

// Next returns the next id.
func (a *TempIDAllocator[T]) Next() T {
	id := a.next
	a.next += a.step
	return id
}

// Peek returns the id Next would return.
func (a *TempIDAllocator[T]) Peek() T {
	return a.next
}

// Reset rewinds the allocator to its first id.
func (a *TempIDAllocator[T]) Reset() {
	a.next = a.start
}

// Restore continues a sequence from a previously peeked value. It refuses
// values that would hand out ids again.
func (a *TempIDAllocator[T]) Restore(next T) error {
	if next > a.start || (next-a.start)%a.step != 0 {
		return fmt.Errorf("dashboard: cannot restore allocator at %d (start %d, step %d)", next, a.start, a.step)
	}
	if next > a.next {
		return fmt.Errorf("dashboard: restoring allocator at %d would repeat ids (next %d)", next, a.next)
	}
	a.next = next
	return nil
}
