package driver

import (
	"os"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/lower"
	"github.com/johmaru/sprs-sub000/parser"
)

// Module is one compiled Sprs module.
type Module struct {
	// Name is the effective module name: the declared pkg name if present,
	// else the file stem.
	Name string
	// Gen is the generator that lowered the module.
	Gen *lower.Generator
	// M is the lowered LLVM IR module.
	M *ir.Module
}

// Loader resolves import declarations depth-first and compiles each unique
// module exactly once, in dependency order.
type Loader struct {
	// srcDir is the directory holding the .sprs source files.
	srcDir string
	// eh is invoked for every error encountered during loading and lowering.
	eh func(error)
	// compiled tracks visited modules, keyed by effective module name.
	compiled map[string]bool
	// externs accumulates the public functions of compiled modules, keyed by
	// "module.fn".
	externs lower.Externs
	// visible is the loader's scope of dotted names (Enum.Variant,
	// Struct.Field) bound by compiled modules; private names are pruned when
	// their module's compilation completes.
	visible map[string]bool
	// directives accumulates preprocessor directives across the compilation
	// unit, in discovery order.
	directives []string
	// modules holds the compiled modules in dependency order.
	modules []*Module
}

// NewLoader returns a module loader reading sources from srcDir. The error
// handler eh is invoked when an error is encountered during loading.
func NewLoader(srcDir string, eh func(error)) *Loader {
	return &Loader{
		srcDir:   srcDir,
		eh:       eh,
		compiled: make(map[string]bool),
		externs:  make(lower.Externs),
		visible:  make(map[string]bool),
	}
}

// Load opens <srcDir>/<name>.sprs, parses it, compiles its imports
// depth-first, and lowers the module itself. A module already compiled under
// its effective name is a no-op.
func (l *Loader) Load(name string) error {
	path := filepath.Join(l.srcDir, name+".sprs")
	buf, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "unable to read source file %q", path)
		l.eh(err)
		return err
	}
	file, err := parser.Parse(path, string(buf))
	if err != nil {
		l.eh(err)
		return err
	}
	modName := file.PkgName()
	if modName == "" {
		modName = name
	}
	if l.compiled[modName] {
		return nil
	}
	l.compiled[modName] = true
	l.directives = append(l.directives, gatherDirectives(file)...)
	// Compile imports before the importer, so cross-module references
	// resolve through the accumulated extern table.
	for _, item := range file.Items {
		if imp, ok := item.(*ast.Import); ok {
			if err := l.Load(imp.Name); err != nil {
				return errors.WithStack(err)
			}
		}
	}
	var opts []lower.Option
	if modName == "main" {
		opts = append(opts, lower.WithMain())
	}
	opts = append(opts, lower.WithExterns(l.externs))
	gen := lower.NewGenerator(l.eh, file, modName, opts...)
	m := gen.Lower()
	for name, sig := range gen.Publics() {
		l.externs[name] = sig
	}
	for name := range collectDotted(file) {
		l.visible[name] = true
	}
	// Private enum variants and struct fields must not be visible to other
	// modules once this module's compilation completes.
	for _, name := range gen.Privates() {
		delete(l.visible, name)
	}
	l.modules = append(l.modules, &Module{Name: modName, Gen: gen, M: m})
	return nil
}

// Modules returns the compiled modules in dependency order.
func (l *Loader) Modules() []*Module {
	return l.modules
}

// Directives returns the preprocessor directives gathered across the
// compilation unit, in discovery order.
func (l *Loader) Directives() []string {
	return l.directives
}

// collectDotted returns the dotted names (Enum.Variant, Struct.Field) bound
// by the file's top-level declarations.
func collectDotted(file *ast.File) map[string]bool {
	dotted := make(map[string]bool)
	for _, item := range file.Items {
		switch item := item.(type) {
		case *ast.EnumItem:
			for _, variant := range item.Decl.Variants {
				dotted[item.Decl.Name+"."+variant.Name] = true
			}
		case *ast.StructItem:
			for _, field := range item.Decl.Fields {
				dotted[item.Decl.Name+"."+field.Name] = true
			}
		}
	}
	return dotted
}
