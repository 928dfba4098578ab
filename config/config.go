// Package config reads the sprs.toml project file.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Project is the decoded sprs.toml project file.
type Project struct {
	// Name of the project; also the name of the final executable.
	Name string `toml:"name"`
	// Version string; informational.
	Version string `toml:"version"`
	// SrcDir is the directory holding the .sprs source files.
	SrcDir string `toml:"src_dir"`
	// OutDir is the directory receiving .ll, .o, the runtime archive and
	// the final executable.
	OutDir string `toml:"out_dir"`
}

// Load reads and decodes the project file at the given path. Missing
// directory fields fall back to src and out.
func Load(path string) (*Project, error) {
	project := &Project{
		SrcDir: "src",
		OutDir: "out",
	}
	if _, err := toml.DecodeFile(path, project); err != nil {
		return nil, errors.Wrapf(err, "unable to decode project file %q", path)
	}
	if project.Name == "" {
		return nil, errors.Errorf("project file %q missing name", path)
	}
	return project, nil
}
