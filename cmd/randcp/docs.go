package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// newDocsCmd builds the hidden gen-docs command. It documents the root
// command it is attached to.
func newDocsCmd() *cobra.Command {
	var dir, format string

	cmd := &cobra.Command{
		Use:    "gen-docs",
		Short:  "Write randcp reference pages (man, markdown, rest or yaml)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			root := cmd.Root()
			root.DisableAutoGenTag = true
			switch format {
			case "man":
				return doc.GenManTree(root, &doc.GenManHeader{
					Title:   "RANDCP",
					Section: "1",
					Source:  "randcp " + version,
				}, dir)
			case "markdown":
				return doc.GenMarkdownTree(root, dir)
			case "rest":
				return doc.GenReSTTree(root, dir)
			case "yaml":
				return doc.GenYamlTree(root, dir)
			default:
				return fmt.Errorf("unknown format %q (use man, markdown, rest or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "docs", "output directory")
	cmd.Flags().StringVar(&format, "format", "man", "output format")
	return cmd
}
