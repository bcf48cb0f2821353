package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	echo "github.com/echopf/echo.go"
)

func newTreeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "tree [categories|groups] [container] [root refid]",
		Short:     "Print the category or group hierarchy of a container",
		Args:      cobra.RangeArgs(2, 3),
		ValidArgs: []string{echo.ResourceCategory, echo.ResourceGroup},
		RunE: func(cmd *cobra.Command, args []string) error {
			container, root := args[1], ""
			if len(args) == 3 {
				root = args[2]
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			defer c.Close()

			var out string
			switch args[0] {
			case echo.ResourceCategory:
				m := echo.NewCategoriesMap(c, container, root)
				if err := m.Fetch(cmd.Context()); err != nil {
					return err
				}
				out = renderTree(container, m.Tree())
			case echo.ResourceGroup:
				m := echo.NewGroupsMap(c, container, root)
				if err := m.Fetch(cmd.Context()); err != nil {
					return err
				}
				out = renderTree(container, m.Tree())
			default:
				return fmt.Errorf("unknown tree %q, want categories or groups", args[0])
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}
