// Package main provides tests for the navshell CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/navshell/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "navshell") {
		t.Errorf("version output should contain 'navshell', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"serve", "tui", "menu", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestMenuCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	menuYAML := "title: Ops\nitems:\n  - id: home\n    label: Home\n    href: /\n"
	if err := os.WriteFile(path, []byte(menuYAML), 0600); err != nil {
		t.Fatalf("failed to write menu: %v", err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"menu", "--menu", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("menu command error = %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"Ops", "home", "Home"} {
		if !strings.Contains(output, expected) {
			t.Errorf("menu output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestInvalidCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"invalid-command"})

	if err := cmd.Execute(); err == nil {
		t.Error("invalid command should return error")
	}
}
