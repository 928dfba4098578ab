package driver_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/johmaru/sprs-sub000/config"
	"github.com/johmaru/sprs-sub000/driver"
)

// buildAndRun compiles the given name -> source pairs into a native binary,
// runs it and returns its stdout. The test is skipped when the host
// toolchain is unavailable.
func buildAndRun(t *testing.T, files map[string]string) string {
	t.Helper()
	if _, err := exec.LookPath("clang"); err != nil {
		t.Skip("clang not found on PATH")
	}
	if _, err := exec.LookPath("ar"); err != nil {
		t.Skip("ar not found on PATH")
	}
	if runtime.GOOS != "linux" {
		t.Skipf("host %s cannot run the linux test binaries", runtime.GOOS)
	}
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, src := range files {
		path := filepath.Join(srcDir, name+".sprs")
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	project := &config.Project{
		Name:   "scenario",
		SrcDir: srcDir,
		OutDir: filepath.Join(dir, "out"),
	}
	exePath, err := driver.Build(project, driver.Target{OS: driver.OSLinux})
	if err != nil {
		t.Fatalf("unable to build scenario; %v", err)
	}
	out, err := exec.Command(exePath).Output()
	if err != nil {
		t.Fatalf("unable to run scenario binary; %v", err)
	}
	return string(out)
}

func TestIntegerArithmetic(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
fn main() {
	var x = 1 + 2;
	println!(x);
}
`,
	})
	if want := "3\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}

func TestStringConcatOutput(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
fn main() {
	var s = "hello" + " world";
	println!(s);
}
`,
	})
	if want := "hello world\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}

func TestListPushAndIndex(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
fn main() {
	var y = [];
	list_push!(y, 10);
	list_push!(y, 20);
	println!(y[1]);
}
`,
	})
	if want := "20\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}

func TestWhileLoop(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
fn main() {
	var i = 0;
	while i <= 2 {
		println!(i);
		i = i + 1;
	}
}
`,
	})
	if want := "0\n1\n2\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}

func TestIfElse(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
fn main() {
	var a = 5;
	if a == 5 {
		println!("y");
	} else {
		println!("n");
	}
}
`,
	})
	if want := "y\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}

func TestHalfPrecisionOutput(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
fn main() {
	var h = cast!(3, fp16);
	println!(h);
}
`,
	})
	if want := "3\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}

func TestCrossModuleGreeting(t *testing.T) {
	got := buildAndRun(t, map[string]string{
		"main": `
import b;

fn main() {
	b.greet();
}
`,
		"b": `
pub fn greet() {
	println!("hi");
}
`,
	})
	if want := "hi\n"; got != want {
		t.Errorf("output mismatch; expected %q, got %q", want, got)
	}
}
