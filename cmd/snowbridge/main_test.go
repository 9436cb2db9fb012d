// Package main provides tests for the snowbridge CLI.
package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/leapstack-labs/snowbridge/internal/cli"
	"github.com/leapstack-labs/snowbridge/internal/cli/config"
)

func TestVersionCommand(t *testing.T) {
	config.ResetConfig()
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
	if !strings.Contains(output, "snowbridge") {
		t.Errorf("version output should contain 'snowbridge', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	config.ResetConfig()
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
	expectedCommands := []string{"query", "lineage", "submit", "history", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestLineageCommand(t *testing.T) {
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"lineage", "select * from db.sch.tbl"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("lineage command error = %v", err)
	}

	if !strings.Contains(buf.String(), "DB.SCH.TBL") {
		t.Errorf("lineage output should contain 'DB.SCH.TBL', got: %s", buf.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			config.ResetConfig()
			cmd := cli.NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"completion", shell})

			err := cmd.Execute()
			if err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"unknown-command"})

	err := cmd.Execute()
	if err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
