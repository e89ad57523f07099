//go:build stave

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// binaries lists the commands under cmd/ that Build produces.
var binaries = []string{"g2p-cli", "g2p-bench", "g2p-clean"}

// Build compiles the g2p-cli, g2p-bench and g2p-clean binaries.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_CLI, Build_Bench, Build_Clean)
	return nil
}

// Build_CLI compiles the g2p-cli binary with version information.
func Build_CLI() error {
	st.Deps(Init)
	return buildBinary("g2p-cli")
}

// Build_Bench compiles the g2p-bench binary with version information.
func Build_Bench() error {
	st.Deps(Init)
	return buildBinary("g2p-bench")
}

// Build_Clean compiles the g2p-clean binary with version information.
func Build_Clean() error {
	st.Deps(Init)
	return buildBinary("g2p-clean")
}

func buildBinary(name string) error {
	out := "bin/" + name

	// Check if rebuild is needed
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Printf("%s is up to date\n", name)
		}
		return nil
	}

	ldflags := buildLdflags()
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, "./cmd/"+name)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort runs tests in short mode (skips long-running tests).
func TestShort() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// TestVerbose runs tests with verbose output.
func TestVerbose() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "-v", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// LintFix runs golangci-lint with auto-fix enabled.
func LintFix() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	artifacts := append([]string{"bin/", "coverage.out", "coverage.html"}, binaries...)
	for _, a := range artifacts {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs the binaries to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for _, name := range binaries {
		src := "bin/" + name
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, src); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Data namespace for preparing pronunciation samples and vocabularies.
type Data st.Namespace

// Dict converts the CMU pronouncing dictionary into train and test samples.
// Set G2P_CMUDICT to the dictionary file (default: testdata/cmudict.dict).
func (Data) Dict() error {
	dict := envOr("G2P_CMUDICT", "testdata/cmudict.dict")
	if _, err := os.Stat(dict); os.IsNotExist(err) {
		return fmt.Errorf("dictionary not found: %s", dict)
	}
	return sh.RunV("go", "run", "scripts/process-cmudict.go",
		"-input", dict,
		"-output", "testdata/cmudict",
	)
}

// Vocab builds the model vocabulary from the training sample.
func (Data) Vocab() error {
	st.Deps(Data.Dict)
	return sh.RunV("go", "run", "scripts/build-vocab.go",
		"-sample", "testdata/cmudict/train.txt",
		"-output", "testdata/g2p.vocab",
	)
}

// Bench namespace for benchmark-related targets.
type Bench st.Namespace

// Run evaluates the model against the test sample.
// Requires G2P_MODEL, G2P_VOCAB and G2P_SAMPLE or their default files.
func (Bench) Run() error {
	st.Deps(Build_Bench)
	return sh.RunV("./bin/g2p-bench", benchArgs()...)
}

// Sweep runs a variant mass sweep to find a good default for -V.
func (Bench) Sweep() error {
	st.Deps(Build_Bench)
	return sh.RunV("./bin/g2p-bench", append(benchArgs(), "--sweep")...)
}

func benchArgs() []string {
	return []string{
		"--model", envOr("G2P_MODEL", "model.onnx"),
		"--vocabulary", envOr("G2P_VOCAB", "testdata/g2p.vocab"),
		"--sample", envOr("G2P_SAMPLE", "testdata/cmudict/test.txt"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check runs quick validation (vet, lint, short tests).
func Check() error {
	st.Deps(Vet, Lint, TestShort)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Tidy runs go mod tidy and verifies the go.sum is clean.
func Tidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return err
	}
	// Verify no changes to go.sum (useful for CI)
	output, err := sh.Output("git", "diff", "--exit-code", "go.sum")
	if err != nil {
		if output != "" {
			return fmt.Errorf("go.sum is not clean:\n%s", output)
		}
	}
	return nil
}
