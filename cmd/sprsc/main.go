// sprsc is an ahead-of-time compiler for the Sprs language.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/johmaru/sprs-sub000/config"
	"github.com/johmaru/sprs-sub000/driver"
)

func usage() {
	const use = `
Usage: sprsc [OPTION]... build|run
`
	fmt.Fprintln(os.Stderr, use[1:])
	flag.PrintDefaults()
}

func main() {
	var projectPath string
	flag.StringVar(&projectPath, "project", "sprs.toml", "project file path")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	project, err := config.Load(projectPath)
	if err != nil {
		warn.Fatalf("%+v", err)
	}
	target := driver.HostTarget()
	switch flag.Arg(0) {
	case "build":
		exePath, err := driver.Build(project, target)
		if err != nil {
			warn.Fatalf("%+v", err)
		}
		dbg.Printf("wrote executable %q", exePath)
	case "run":
		if err := driver.Run(project, target); err != nil {
			warn.Fatalf("%+v", err)
		}
	default:
		usage()
		os.Exit(1)
	}
}
