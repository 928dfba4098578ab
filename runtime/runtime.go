// Package runtime vendors the C runtime the emitted programs link against
// and builds it into a static archive.
package runtime

import (
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
)

// Source is the vendored runtime source. It implements the ten ABI entry
// points the compiler declares in every module.
//
//go:embed src/runtime.c
var Source []byte

// CC returns the C compiler used for compiling the runtime and the emitted
// IR, overridable through the SPRS_CC environment variable.
func CC() string {
	return env.Str("SPRS_CC", "clang")
}

// WriteSource writes the vendored runtime source to dir/runtime.c and
// returns its path.
func WriteSource(dir string) (string, error) {
	path := filepath.Join(dir, "runtime.c")
	if err := os.WriteFile(path, Source, 0644); err != nil {
		return "", errors.Wrapf(err, "unable to write runtime source %q", path)
	}
	return path, nil
}

// BuildArchive compiles the vendored runtime source and archives it as
// dir/libruntime.a, returning the archive path.
func BuildArchive(dir string) (string, error) {
	srcPath, err := WriteSource(dir)
	if err != nil {
		return "", errors.WithStack(err)
	}
	objPath := filepath.Join(dir, "runtime.o")
	cmd := exec.Command(CC(), "-O2", "-c", srcPath, "-o", objPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "unable to compile runtime source %q", srcPath)
	}
	archivePath := filepath.Join(dir, "libruntime.a")
	cmd = exec.Command("ar", "rcs", archivePath, objPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "unable to archive runtime object %q", objPath)
	}
	return archivePath, nil
}
