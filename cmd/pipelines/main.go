// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command pipelines serves and checks editor pipeline graphs.
//
// The server answers the pipeline editor: it counts a submitted graph's
// nodes and edges and reports whether the graph is a directed acyclic graph.
//
// Usage:
//
//	go run ./cmd/pipelines serve
//	go run ./cmd/pipelines serve --port 9000 --debug
//	go run ./cmd/pipelines serve --config pipelines.yaml
//	go run ./cmd/pipelines check examples/pipeline.json
//	go run ./cmd/pipelines check examples/pipeline.yaml --format json
//
// Example requests:
//
//	# Ping
//	curl http://localhost:8000/
//
//	# Parse a pipeline
//	curl -X POST http://localhost:8000/pipelines/parse \
//	  -H "Content-Type: application/json" \
//	  -d '{"nodes": [...], "edges": [...]}'
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(execute(newRootCmd(), os.Args[1:]))
}

// execute runs root with args and maps its error to an exit status.
// A cyclic pipeline exits 1; any other failure exits 2.
func execute(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	return 2
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "pipelines",
		Short: "Validate pipeline graphs from the pipeline editor",
		Long: `pipelines serves the editor's /pipelines/parse endpoint and checks
pipeline files from the command line. A pipeline is valid when its edges
form a directed acyclic graph.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newCheckCmd(&configPath),
		newVersionCmd(),
	)
	return root
}
