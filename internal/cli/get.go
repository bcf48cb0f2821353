package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	echo "github.com/echopf/echo.go"
	"github.com/echopf/echo.go/pkg/models"
)

// document is what every resource kind offers once fetched.
type document interface {
	Fetch(ctx context.Context) error
	Refid() string
	Clone() *models.Document
}

var resources = map[string]func(c *echo.Client, container, refid string) document{
	echo.ResourceEntry: func(c *echo.Client, container, refid string) document {
		return echo.NewEntry(c, container, refid)
	},
	echo.ResourceRecord: func(c *echo.Client, container, refid string) document {
		return echo.NewRecord(c, container, refid)
	},
	echo.ResourceCategory: func(c *echo.Client, container, refid string) document {
		return echo.NewCategory(c, container, refid)
	},
	echo.ResourceGroup: func(c *echo.Client, container, refid string) document {
		return echo.NewGroup(c, container, refid)
	},
	echo.ResourceMember: func(c *echo.Client, container, refid string) document {
		return echo.NewMember(c, container, refid)
	},
	echo.ResourcePushNotification: func(c *echo.Client, container, refid string) document {
		return echo.NewPushNotification(c, container, refid)
	},
	echo.ResourceMailmag: func(c *echo.Client, container, refid string) document {
		return echo.NewMailmag(c, container, refid)
	},
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newGetCommand(opts *options) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:       "get [resource] [container] [refid]",
		Short:     "Fetch one object and print its fields as JSON",
		Args:      cobra.ExactArgs(3),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, ok := resources[args[0]]
			if !ok {
				return fmt.Errorf("unknown resource %q, want one of %v", args[0], resourceNames())
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			defer c.Close()

			obj := ref(c, args[1], args[2])
			if err := obj.Fetch(cmd.Context()); err != nil {
				return err
			}

			doc := obj.Clone()
			if save != "" {
				data, err := models.Snapshot(doc)
				if err != nil {
					return fmt.Errorf("snapshot: %w", err)
				}
				if err := os.WriteFile(save, data, 0o644); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "Also write a binary snapshot of the object to this file")
	return cmd
}
