package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestExecuteSurfacesFatalErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"definitely-not-a-command"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute("0.0.0-test", "none", "none")
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}

	stderr := errOut.String()
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q, want the fatal error prefixed with Error:", stderr)
	}
	if !strings.Contains(stderr, err.Error()) {
		t.Errorf("stderr = %q, want it to contain %q", stderr, err.Error())
	}
}
