// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{})

	_ = rootCmd.Execute()

	output := buf.String()
	if !strings.Contains(output, "kefirctl") {
		t.Errorf("help output should contain 'kefirctl', got: %s", output)
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--version"})

	_ = rootCmd.Execute()

	output := buf.String()
	if !strings.Contains(output, "1.2.3") {
		t.Errorf("version output should contain '1.2.3', got: %s", output)
	}
	if !strings.Contains(output, "abc123") {
		t.Errorf("version output should contain commit 'abc123', got: %s", output)
	}
}
