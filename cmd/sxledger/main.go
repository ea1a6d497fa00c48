package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "replay":
		if err := replay(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "verify":
		if err := verify(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("sxledger version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sxledger - token ledger simulation and audit tool

Usage:
  sxledger <command> [options]

Commands:
  simulate   Run a collateral/staking scenario and journal every mutation
  replay     Rebuild ledger state from a journal and print a summary
  verify     Replay a journal, check conservation and print the state commitment
  help       Show this help message
  version    Show version information

Examples:
  # Run a scenario with three stakers and journal it
  sxledger simulate --accounts 3 --deposit 1000 --rewards 300 --output run.jsonl

  # Rebuild state from the journal
  sxledger replay run.jsonl

  # Audit the journal against an expected commitment
  sxledger verify run.jsonl --expect 1a2b3c...

For command-specific help, run:
  sxledger <command> --help`)
}
