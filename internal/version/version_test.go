package version

import "testing"

func TestString(t *testing.T) {
	old := Commit
	defer func() { Commit = old }()

	Commit = ""
	if got := String(); got != "roster "+Version {
		t.Fatalf("unexpected version string %q", got)
	}
	Commit = "abc123"
	if got := String(); got != "roster "+Version+" (abc123)" {
		t.Fatalf("unexpected version string %q", got)
	}
}
