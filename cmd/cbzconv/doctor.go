package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"runtime"
	"runtime/debug"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/fileutil"
	"github.com/alnah/go-cbzconv/internal/hints"
	"github.com/alnah/go-cbzconv/internal/logging"
	"github.com/alnah/go-cbzconv/internal/scratch"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Scratch  scratchInfo `json:"scratch"`
	Output   outputInfo  `json:"output"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// scratchInfo holds scratch directory checks.
type scratchInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
	Locked   bool   `json:"locked"`
}

// outputInfo holds output directory checks.
type outputInfo struct {
	Dir      string `json:"dir"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// systemInfo holds runtime settings.
type systemInfo struct {
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	NumCPU      int    `json:"num_cpu"`
	GOMAXPROCS  int    `json:"gomaxprocs"`
	MemoryLimit string `json:"memory_limit"`
	Container   bool   `json:"container"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	configName := ""
	for i, arg := range args {
		switch {
		case arg == "--json":
			jsonOutput = true
		case (arg == "--config" || arg == "-c") && i+1 < len(args):
			configName = args[i+1]
		}
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(configName, envCfg)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	applyEnvConfig(envCfg, cfg)
	applyMemoryLimit(cfg.Limits.MemoryLimitMiB, logging.Discard())

	result := runDoctor(cfg.Scratch.Dir, cfg.Output.Dir)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(scratchDir, outputDir string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NumCPU:     runtime.NumCPU(),
			GOMAXPROCS: runtime.GOMAXPROCS(0),
			Container:  hints.IsInContainer(),
		},
	}

	checkScratch(result, scratchDir)
	checkOutput(result, outputDir)
	checkMemory(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkScratch verifies the scratch directory is usable and free.
func checkScratch(result *doctorResult, dir string) {
	dir, err := fileutil.ExpandHome(dir)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	if dir == "" {
		dir = cbzconv.DefaultScratchDir()
	}
	result.Scratch.Dir = dir

	area, err := scratch.New(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Scratch directory unusable: %v", err))
		return
	}
	if err := fileutil.ProbeWritable(area.Dir()); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Scratch directory not writable: %s", area.Dir()))
		return
	}
	result.Scratch.Writable = true

	locked, err := area.InUse()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not check scratch lock: %v", err))
		return
	}
	if locked {
		result.Scratch.Locked = true
		result.Warnings = append(result.Warnings, "A conversion is running"+hints.ForScratchLocked())
	}
}

// checkOutput verifies the output directory, when it exists, is writable.
func checkOutput(result *doctorResult, dir string) {
	dir, err := fileutil.ExpandHome(dir)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	if dir == "" {
		dir = "."
	}
	result.Output.Dir = dir

	if !fileutil.DirExists(dir) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Output directory %s does not exist yet; it will be created", dir))
		return
	}
	result.Output.Exists = true
	if err := fileutil.ProbeWritable(dir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Output directory not writable: %s", dir))
		return
	}
	result.Output.Writable = true
}

// checkMemory reports the Go memory limit.
func checkMemory(result *doctorResult) {
	limit := debug.SetMemoryLimit(-1)
	if limit == math.MaxInt64 {
		result.System.MemoryLimit = "unset"
		if result.System.Container {
			result.Warnings = append(result.Warnings, "No memory limit inside a container"+hints.ForMemory())
		}
		return
	}
	result.System.MemoryLimit = humanize.IBytes(uint64(limit)) // #nosec G115 -- limit is positive
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "cbzconv doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Scratch")
	if r.Scratch.Writable {
		fmt.Fprintf(w, "  [OK] Writable: %s\n", r.Scratch.Dir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Not writable: %s\n", r.Scratch.Dir)
	}
	if r.Scratch.Locked {
		fmt.Fprintln(w, "  [WARN] Locked by another conversion")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	switch {
	case r.Output.Writable:
		fmt.Fprintf(w, "  [OK] Writable: %s\n", r.Output.Dir)
	case !r.Output.Exists:
		fmt.Fprintf(w, "  [WARN] Missing: %s\n", r.Output.Dir)
	default:
		fmt.Fprintf(w, "  [ERROR] Not writable: %s\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d (of %d CPUs)\n", r.System.GOMAXPROCS, r.System.NumCPU)
	fmt.Fprintf(w, "  [OK] Memory limit: %s\n", r.System.MemoryLimit)
	if r.System.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
