package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/internal/cliopt"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

type fieldView struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Aliases  []string `json:"aliases,omitempty"`
	ValueSet bool     `json:"valueSet,omitempty"`
}

// NewFieldsCommand lists what a query can name: fields, aliases and order
// keys.
func NewFieldsCommand(env *cliopt.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List searchable fields and order keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			valueSet := map[string]bool{}
			for _, f := range game.ValueSetFields() {
				valueSet[f.Name] = true
			}
			var views []fieldView
			for _, f := range game.Fields() {
				views = append(views, fieldView{
					Name:     f.Name,
					Kind:     f.Kind.String(),
					Aliases:  game.Aliases(f.Name),
					ValueSet: valueSet[f.Name],
				})
			}

			switch cliutil.ParseOutputFormat(env.Global.Format) {
			case cliutil.FormatJSON:
				cliutil.PrintJSON(env.Out, map[string]any{"fields": views, "orderKeys": order.Keys()})
			case cliutil.FormatIDs:
				for _, v := range views {
					fmt.Fprintln(env.Out, v.Name)
				}
			default:
				for _, v := range views {
					line := fmt.Sprintf("%-20s %-6s", v.Name, v.Kind)
					if v.ValueSet {
						line += " filterable"
					}
					if len(v.Aliases) > 0 {
						line += "  aliases: " + strings.Join(v.Aliases, ", ")
					}
					fmt.Fprintln(env.Out, strings.TrimRight(line, " "))
				}
				fmt.Fprintf(env.Out, "\norder keys: %s\n", keyList())
				fmt.Fprintln(env.Out, "quick search: @developer #tag !platform")
			}
			return nil
		},
	}
}
