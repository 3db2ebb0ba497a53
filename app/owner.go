package app

import (
	"bytes"
	"runtime"
	"strconv"
)

// ownerGuard asserts that the RpcClient's pending-call table and writer
// are only ever touched from the single goroutine that owns the Start
// loop, per spec.md §5 ("Shared resources... are exclusively owned by the
// IO task"). It is a debug aid only: production call sites never check it
// outside of tests, so a wrong id costs nothing but a missed assertion.
type ownerGuard struct {
	id int64
}

// newOwnerGuard captures the calling goroutine's id as the expected owner.
func newOwnerGuard() ownerGuard {
	return ownerGuard{id: goroutineID()}
}

// assertOwner panics if called from a goroutine other than the one that
// created g. Tests use this to catch accidental cross-goroutine access to
// App's unsynchronized fields; it is never called from non-test code.
func (g ownerGuard) assertOwner() {
	if id := goroutineID(); id != g.id {
		panic("app: accessed from non-owning goroutine")
	}
}

// goroutineID extracts the numeric id from the header line of a stack
// trace ("goroutine 123 [running]:"). This is the standard debug-only
// trick for a single-owner assertion; Go has no supported API for it.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
