package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestStdio(t *testing.T) {
	out, errOut, err := execute(t, "„Guten Tag“, sagte er.\n\n?!\nEnde\n", "-", "-")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if want := "guten tag sagte er\nende\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
	if !strings.Contains(errOut, "(2 lines)") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(in, []byte("Caf\xe9, BAR!\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "", "-e", "ISO-8859-15", in, out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "caf\xe9 bar\n"; string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing args", []string{"-"}},
		{"missing input", []string{filepath.Join(t.TempDir(), "none"), "-"}},
		{"bad encoding", []string{"-e", "klingon", "-", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, "", tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
