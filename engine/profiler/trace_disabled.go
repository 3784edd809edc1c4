//go:build !profile

package profiler

import "errors"

// ErrTracingDisabled is returned by DumpTrace unless built with -tags profile.
var ErrTracingDisabled = errors.New("profiler: built without the profile tag")

func InitTrace(capacity int) {}

// Start opens a trace span and returns the func closing it.
func Start(name string) func() { return func() {} }

func DumpTrace(path string) error { return ErrTracingDisabled }
