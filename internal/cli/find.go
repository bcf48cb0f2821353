package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	echo "github.com/echopf/echo.go"
	"github.com/echopf/echo.go/pkg/models"
)

type query struct {
	page  int
	limit int
	order string
	asc   bool
}

func (q *query) build(cmd *cobra.Command) *echo.Query {
	out := &echo.Query{Page: q.page, Limit: q.limit, Order: q.order}
	if cmd.Flags().Changed("asc") {
		asc := q.asc
		out.Asc = &asc
	}
	return out
}

func newFindCommand(opts *options) *cobra.Command {
	var q query

	cmd := &cobra.Command{
		Use:       "find [entries|records|members] [container]",
		Short:     "List one page of entries, records or members",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"entries", "records", "members"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, container, w := cmd.Context(), args[1], cmd.OutOrStdout()
			switch args[0] {
			case "entries":
				return findAndPrint(ctx, w, c, container, q.build(cmd), echo.FindEntries)
			case "records":
				return findAndPrint(ctx, w, c, container, q.build(cmd), echo.FindRecords)
			case "members":
				return findAndPrint(ctx, w, c, container, q.build(cmd), echo.FindMembers)
			default:
				return fmt.Errorf("cannot find %q, want entries, records or members", args[0])
			}
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&q.page, "page", 0, "Page number, starting at 1")
	flags.IntVar(&q.limit, "limit", 0, "Items per page")
	flags.StringVar(&q.order, "order", "", "Field to order by")
	flags.BoolVar(&q.asc, "asc", false, "Ascending order")
	return cmd
}

func findAndPrint[T interface{ Clone() *models.Document }](
	ctx context.Context,
	w io.Writer,
	c *echo.Client,
	container string,
	q *echo.Query,
	find func(context.Context, *echo.Client, string, *echo.Query) (*echo.List[T], error),
) error {
	list, err := find(ctx, c, container, q)
	if err != nil {
		return err
	}
	for _, item := range list.Items {
		if err := printJSON(w, item.Clone()); err != nil {
			return err
		}
	}
	p := list.Pagination
	_, err = fmt.Fprintf(w, "page %d/%d, %d of %d items\n", p.Page, p.PageCount, list.Len(), p.Count)
	return err
}
