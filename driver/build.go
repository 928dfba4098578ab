package driver

import (
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"

	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/config"
	"github.com/johmaru/sprs-sub000/runtime"
)

// Build compiles the project: the module graph rooted at main is loaded from
// src_dir, each module is written as <out_dir>/<name>.ll and compiled to a
// relocatable object, the runtime archive is built, and everything is linked
// into <out_dir>/<project>[.exe]. The path of the executable is returned.
func Build(project *config.Project, target Target) (string, error) {
	if err := os.MkdirAll(project.OutDir, 0755); err != nil {
		return "", errors.Wrapf(err, "unable to create output directory %q", project.OutDir)
	}
	var errs []error
	eh := func(err error) {
		errs = append(errs, err)
	}
	l := NewLoader(project.SrcDir, eh)
	if err := l.Load("main"); err != nil {
		return "", errors.WithStack(err)
	}
	if len(errs) > 0 {
		return "", errs[0]
	}
	// Preprocessor directives override the requested target; the last
	// directive wins.
	for _, directive := range l.Directives() {
		target = target.applyDirective(directive)
	}
	var objPaths []string
	for _, mod := range l.Modules() {
		dbg.Printf("compiling module %q", mod.Name)
		mod.M.TargetTriple = target.Triple()
		mod.M.DataLayout = target.DataLayout()
		llPath := filepath.Join(project.OutDir, mod.Name+".ll")
		if err := os.WriteFile(llPath, []byte(mod.M.String()), 0644); err != nil {
			return "", errors.Wrapf(err, "unable to write module %q", llPath)
		}
		objPath := filepath.Join(project.OutDir, mod.Name+".o")
		// The -O1 pipeline performs the mem2reg promotion of the stack
		// slots the emitter allocates.
		cmd := exec.Command(runtime.CC(), "-O1", "-target", target.Triple(), "-c", llPath, "-o", objPath)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", errors.Wrapf(err, "unable to compile module %q", llPath)
		}
		objPaths = append(objPaths, objPath)
	}
	archivePath, err := runtime.BuildArchive(project.OutDir)
	if err != nil {
		return "", errors.WithStack(err)
	}
	exePath := filepath.Join(project.OutDir, project.Name+target.ExeSuffix())
	args := append(objPaths, archivePath, "-o", exePath, "-lm", "-ldl", "-lpthread")
	if target.OS == OSWindows {
		args = append(args, "-target", target.Triple())
	}
	cmd := exec.Command(runtime.CC(), args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "unable to link executable %q", exePath)
	}
	return exePath, nil
}

// Run builds the project and executes the resulting binary when the target
// matches the host operating system; a cross-compiled binary is left on disk
// with a warning instead.
func Run(project *config.Project, target Target) error {
	exePath, err := Build(project, target)
	if err != nil {
		return errors.WithStack(err)
	}
	if target.OS.String() != goruntime.GOOS {
		warn.Printf("skipping run; target %v does not match host %v", target.OS, goruntime.GOOS)
		return nil
	}
	abs, err := filepath.Abs(exePath)
	if err != nil {
		return errors.WithStack(err)
	}
	cmd := exec.Command(abs)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "unable to run executable %q", exePath)
	}
	return nil
}
