// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines"
	"github.com/AleutianAI/AleutianPipelines/services/pipelines/config"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	format string
}

func newCheckCmd(configPath *string) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check that a pipeline file is a DAG",
		Long: `check reads a pipeline exported from the editor (JSON, or YAML for
.yaml/.yml files) and reports its node and edge counts and whether it is a
directed acyclic graph.

Exit status is 0 for a DAG, 1 when the pipeline contains a cycle and 2 when
the file cannot be read or decoded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", opts.format)
			}
			limits, err := config.LoadLimits(*configPath)
			if err != nil {
				return err
			}
			return runCheck(cmd, limits, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	return cmd
}

func runCheck(cmd *cobra.Command, limits config.LimitsConfig, path string, opts checkOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pipeline: %w", err)
	}
	defer f.Close()

	p, err := pipelines.DecodePipeline(f, pipelines.FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	svc := pipelines.NewService(pipelines.ServiceConfig{
		MaxNodes: limits.MaxNodes,
		MaxEdges: limits.MaxEdges,
	})
	resp, err := svc.Parse(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		writeReport(out, stylesFor(out), path, resp)
	}

	if !resp.IsDAG {
		return &exitError{code: 1}
	}
	return nil
}

func writeReport(w io.Writer, st styles, path string, resp *pipelines.ParseResponse) {
	fmt.Fprintln(w, st.title.Render(path))
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("nodes:        "), resp.NumNodes)
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("edges:        "), resp.NumEdges)
	if resp.DroppedEdges > 0 {
		fmt.Fprintf(w, "  %s %s\n", st.label.Render("dropped edges:"),
			st.warning.Render(fmt.Sprintf("%d (unknown endpoint)", resp.DroppedEdges)))
	}
	if resp.IsDAG {
		fmt.Fprintf(w, "  %s\n", st.success.Render("✓ DAG"))
		return
	}
	fmt.Fprintf(w, "  %s %s\n", st.failure.Render("✗ not a DAG, cycle:"), strings.Join(resp.Cycle, " → "))
}
