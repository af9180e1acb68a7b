package main

import (
	"strings"

	"github.com/spf13/cobra"

	"sessionlint/internal/format"
	"sessionlint/internal/schema"
	"sessionlint/internal/version"
)

func newSchemasCmd(g *globalOptions) *cobra.Command {
	var (
		formatFlag string
		noHeader   bool
	)

	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List schema generations, the CLI versions they cover, and where they are loaded from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := schema.NewRegistry(g.cfg.Schemas, schema.WithLogger(g.logger))
			if err != nil {
				return err
			}

			src := registry.Sources()
			rows := make([]format.SchemaRow, 0, len(registry.Keys())+1)
			for _, key := range registry.Keys() {
				// Compile each one so a broken override is reported here.
				if _, err := registry.Resolve(key); err != nil {
					return err
				}
				rows = append(rows, format.SchemaRow{
					Name:   key.Name(),
					Schema: key.String(),
					Covers: version.Range(key),
					Source: src.Describe(key),
				})
			}
			rows = append(rows, format.SchemaRow{
				Name:   "history",
				Schema: "-",
				Covers: "shared definitions",
				Source: src.DescribeHistory(),
			})

			return format.WriteSchemas(cmd.OutOrStdout(), rows, !noHeader, strings.ToLower(formatFlag))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for plain and table output")

	return cmd
}
