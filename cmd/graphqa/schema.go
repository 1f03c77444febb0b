package main

import (
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the graph schema given to the query translator",
	Long: `Print the schema text used by the cypher strategy: the static schema from
retrieval.schema when configured, otherwise node properties and
relationship patterns described from the database.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	schema, err := a.Schema(cmd.Context())
	if err != nil {
		return err
	}
	return formatter(cmd).PrintText("", schema)
}
