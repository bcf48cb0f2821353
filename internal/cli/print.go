package cli

import (
	"fmt"
	"io"

	"github.com/disiqueira/gotree/v3"
	"github.com/goccy/go-json"

	"github.com/echopf/echo.go/pkg/models"
	"github.com/echopf/echo.go/pkg/treemap"
)

func printJSON(w io.Writer, doc *models.Document) error {
	fields := doc.Fields()
	if _, ok := fields["refid"]; !ok && !doc.Address().IsLocal() {
		fields["refid"] = doc.Address().Refid
	}
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// treeNode is a category or a group.
type treeNode interface {
	Refid() string
	OptString(key, fallback string) string
}

func nodeLabel[N treeNode](t *treemap.Tree[N]) string {
	node, ok := t.Node()
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%s (%s)", node.OptString("name", ""), node.Refid())
}

// renderTree draws t with gotree. label names the top line when t holds a
// whole hierarchy; a rooted tree is labelled by its root node instead.
func renderTree[N treeNode](label string, t *treemap.Tree[N]) string {
	if t.Rooted() {
		label = nodeLabel(t)
	}
	root := gotree.New(label)
	addChildren(root, t.Children())
	return root.Print()
}

func addChildren[N treeNode](parent gotree.Tree, children []*treemap.Tree[N]) {
	for _, child := range children {
		addChildren(parent.Add(nodeLabel(child)), child.Children())
	}
}
