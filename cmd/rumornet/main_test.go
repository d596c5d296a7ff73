package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRootCmd creates a root command with persistent flags for testing
// subcommands.
func newTestRootCmd(dataDir string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "rumornet",
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("data-dir", dataDir, "Directory for the results archive")
	rootCmd.PersistentFlags().String("log-level", "error", "Log level")
	return rootCmd
}

// execute runs one subcommand under a test root and captures its output.
func execute(t *testing.T, dataDir string, sub *cobra.Command, args ...string) string {
	t.Helper()
	root := newTestRootCmd(dataDir)
	root.AddCommand(sub)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v: %v\noutput: %s", args, err, buf.String())
	}
	return buf.String()
}

func TestRunCmdFlags(t *testing.T) {
	cmd := newRunCmd()
	for _, name := range []string{"config", "archive", "seed", "population", "ticks", "network", "verify", "true", "render-sample"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
	}
}

func TestRunCmdJSON(t *testing.T) {
	out := execute(t, t.TempDir(), newRunCmd(),
		"run", "--json", "--population", "20", "--ticks", "100", "--seed", "5")

	var result struct {
		Result struct {
			Tick               int     `json:"tick"`
			ProportionInformed float64 `json:"proportion_informed"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Result.Tick != 100 {
		t.Errorf("tick = %d, want 100", result.Result.Tick)
	}
	if result.Result.ProportionInformed <= 0 {
		t.Errorf("proportion_informed = %g, want > 0", result.Result.ProportionInformed)
	}
}

func TestRunCmdRenderSample(t *testing.T) {
	out := execute(t, t.TempDir(), newRunCmd(),
		"run", "--json", "--render-sample", "--population", "20", "--ticks", "100")

	var result struct {
		Sample struct {
			Dots []json.RawMessage `json:"dots"`
		} `json:"sample"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(result.Sample.Dots) != 20 {
		t.Errorf("got %d dots, want 20", len(result.Sample.Dots))
	}
}

func TestRunArchiveListResume(t *testing.T) {
	dataDir := t.TempDir()

	out := execute(t, dataDir, newRunCmd(),
		"run", "--archive", "--population", "20", "--ticks", "100", "--seed", "3")
	if !strings.Contains(out, "finished after 100 ticks") {
		t.Fatalf("unexpected run output: %s", out)
	}

	listOut := execute(t, dataDir, newListCmd(), "list")
	if !strings.Contains(listOut, "ticks=100") {
		t.Errorf("archived run missing from list: %s", listOut)
	}

	// The run id is the first field of the list line.
	runID := strings.Fields(listOut)[0]

	resumeOut := execute(t, dataDir, newResumeCmd(),
		"resume", runID, "--ticks", "100")
	if !strings.Contains(resumeOut, "resumed at tick 100, finished at tick 200") {
		t.Errorf("unexpected resume output: %s", resumeOut)
	}
}

func TestResumeWithoutExtensionFails(t *testing.T) {
	dataDir := t.TempDir()
	execute(t, dataDir, newRunCmd(),
		"run", "--archive", "--population", "20", "--ticks", "100")
	listOut := execute(t, dataDir, newListCmd(), "list")
	runID := strings.Fields(listOut)[0]

	root := newTestRootCmd(dataDir)
	root.AddCommand(newResumeCmd())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"resume", runID})
	if err := root.Execute(); err == nil {
		t.Error("resuming a finished run without --ticks should fail")
	}
}

func TestResumeUnknownRunFails(t *testing.T) {
	root := newTestRootCmd(t.TempDir())
	root.AddCommand(newResumeCmd())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"resume", "ghost"})
	if err := root.Execute(); err == nil {
		t.Error("resuming an unknown run should fail")
	}
}

func TestExportCmdCSV(t *testing.T) {
	dataDir := t.TempDir()
	execute(t, dataDir, newRunCmd(),
		"run", "--archive", "--population", "20", "--ticks", "100")

	csvPath := filepath.Join(dataDir, "out.csv")
	execute(t, dataDir, newExportCmd(), "export", "--csv", csvPath)

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("got %d CSV lines, want header + 1 row", len(lines))
	}
}

func TestExportCmdRequiresTarget(t *testing.T) {
	root := newTestRootCmd(t.TempDir())
	root.AddCommand(newExportCmd())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"export"})
	if err := root.Execute(); err == nil {
		t.Error("export without --csv or --arrow should fail")
	}
}

func TestGridCmdJSON(t *testing.T) {
	out := execute(t, t.TempDir(), newGridCmd(),
		"grid", "--json", "--width", "16", "--height", "16", "--ticks", "50")

	var result struct {
		Ticks   int     `json:"ticks"`
		Adopted float64 `json:"adopted"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Ticks != 50 {
		t.Errorf("ticks = %d, want 50", result.Ticks)
	}
	if result.Adopted <= 0 {
		t.Errorf("adopted = %g, want > 0", result.Adopted)
	}
}

func TestSweepCmd(t *testing.T) {
	dataDir := t.TempDir()
	sweepPath := filepath.Join(dataDir, "sweep.yaml")
	doc := `
repetitions: 2
base:
  population_size: 20
  max_ticks: 100
axes:
  rumor_is_true: [false, true]
`
	if err := os.WriteFile(sweepPath, []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	csvPath := filepath.Join(dataDir, "sweep.csv")
	out := execute(t, dataDir, newSweepCmd(),
		"sweep", sweepPath, "--json", "--csv", csvPath)

	var result struct {
		Cells   int `json:"cells"`
		Records int `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Cells != 2 || result.Records != 4 {
		t.Errorf("cells = %d, records = %d, want 2 and 4", result.Cells, result.Records)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 5 {
		t.Errorf("got %d CSV lines, want header + 4 rows", len(lines))
	}
}

func TestVersionCmdJSON(t *testing.T) {
	root := newTestRootCmd(t.TempDir())
	root.AddCommand(newVersionCmd())
	root.SetArgs([]string{"version", "--json"})

	// newVersionCmd writes to os.Stdout directly; just check it executes.
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
}
