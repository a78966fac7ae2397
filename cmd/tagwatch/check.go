package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chis/tagwatch/internal/bootstrap"
	"github.com/chis/tagwatch/internal/output"
)

// runCheckCommand performs a single check cycle and prints the result.
// Notifications and state updates behave exactly as in daemon mode.
func runCheckCommand(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, cleanup, err := bootstrap.InitializeServices(bootstrap.InitOptions{
		ConfigPath: *configPath,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	result, err := deps.Orchestrator.RunCycle(ctx)
	if err != nil {
		if *jsonOutput {
			output.WriteJSONError(os.Stdout, err)
		}
		return err
	}

	if *jsonOutput {
		return output.WriteJSONData(os.Stdout, result)
	}

	for _, upd := range result.Updates {
		fmt.Printf("Container: %s\n", upd.ContainerName)
		fmt.Printf("  Current:  %s:%s\n", upd.Repository, upd.CurrentTag)
		fmt.Printf("  Latest:   %s\n", upd.LatestVersion)
		fmt.Printf("  Status:   UPDATE AVAILABLE\n\n")
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Containers checked: %d\n", result.Checked)
	fmt.Printf("Updates available:  %d\n", result.UpdatesFound)
	fmt.Printf("Notified:           %d\n", result.Notified)
	fmt.Printf("Skipped:            %d\n", result.Skipped)
	if result.Failed > 0 {
		fmt.Printf("Failed checks:      %d\n", result.Failed)
	}
	return nil
}
