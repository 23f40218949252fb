// Package main is the entry point for the mercstats CLI tool, which aggregates
// Mercenaries match telemetry into published hero and composition stats.
package main

import "github.com/pable/go-merc-metrics/cmd"

func main() {
	cmd.Execute()
}
