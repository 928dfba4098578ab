package driver

import (
	"runtime"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/johmaru/sprs-sub000/ast"
)

// OS enumerates the supported target operating systems.
type OS int

// Target operating systems.
const (
	OSLinux OS = iota
	OSWindows
)

// String returns the name of the target operating system.
func (os OS) String() string {
	switch os {
	case OSWindows:
		return "windows"
	}
	return "linux"
}

// Target describes the code generation target of a compilation.
type Target struct {
	OS OS
}

// HostTarget returns the target matching the host operating system,
// overridable through the SPRS_TARGET environment variable ("linux" or
// "windows").
func HostTarget() Target {
	switch env.Str("SPRS_TARGET", runtime.GOOS) {
	case "windows":
		return Target{OS: OSWindows}
	}
	return Target{OS: OSLinux}
}

// Triple returns the LLVM target triple.
func (t Target) Triple() string {
	switch t.OS {
	case OSWindows:
		return "x86_64-pc-windows-gnu"
	}
	return "x86_64-unknown-linux-gnu"
}

// DataLayout returns the LLVM data layout specification of the target.
func (t Target) DataLayout() string {
	switch t.OS {
	case OSWindows:
		return "e-m:w-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128"
	}
	return "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128"
}

// ExeSuffix returns the file name suffix of executables on the target.
func (t Target) ExeSuffix() string {
	if t.OS == OSWindows {
		return ".exe"
	}
	return ""
}

// applyDirective applies a single preprocessor directive to the target. The
// known directives name a target OS; any other directive warns.
func (t Target) applyDirective(directive string) Target {
	switch strings.TrimSpace(directive) {
	case "Windows":
		t.OS = OSWindows
	case "Linux":
		t.OS = OSLinux
	default:
		warn.Printf("ignoring unknown preprocessor directive %q", directive)
	}
	return t
}

// gatherDirectives collects the #define directives of a source file in
// declaration order.
func gatherDirectives(file *ast.File) []string {
	var directives []string
	for _, item := range file.Items {
		if item, ok := item.(*ast.Preprocessor); ok {
			directives = append(directives, item.Directive)
		}
	}
	return directives
}
