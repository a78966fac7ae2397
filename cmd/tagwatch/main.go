package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// daemonInvocation reports whether the argument list selects daemon mode:
// no subcommand, or flags only.
func daemonInvocation(args []string) bool {
	return len(args) == 1 || strings.HasPrefix(args[1], "-")
}

func main() {
	// Default to daemon mode if no args or only flags
	if daemonInvocation(os.Args) {
		args := []string{}
		if len(os.Args) > 1 {
			args = os.Args[1:]
		}
		if err := runRunCommand(args); err != nil {
			log.Fatalf("Daemon failed: %v", err)
		}
		return
	}

	command := os.Args[1]

	switch command {
	case "run":
		if err := runRunCommand(os.Args[2:]); err != nil {
			log.Fatalf("Daemon failed: %v", err)
		}
	case "check":
		if err := runCheckCommand(os.Args[2:]); err != nil {
			log.Fatalf("Check command failed: %v", err)
		}
	case "state":
		if err := runStateCommand(os.Args[2:]); err != nil {
			log.Fatalf("State command failed: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s\nAvailable commands: run, check, state\nRun with no arguments for daemon mode", command)
	}
}
