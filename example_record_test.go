package echo_test

import (
	"context"
	"fmt"

	echo "github.com/echopf/echo.go"
	"github.com/echopf/echo.go/internal/fakeecho"
	"github.com/echopf/echo.go/pkg/models"
)

func ExampleRecord_Push() {
	server := fakeecho.NewServer("app", "key")
	server.Start()
	defer server.Stop()

	c, err := echo.New(echo.Config{Domain: server.Address(), Scheme: "http", AppID: "app", AppKey: "key"})
	if err != nil {
		panic(err)
	}
	defer c.Close()

	ctx := context.Background()

	rec := echo.NewRecord(c, "db", "")
	rec.Set("title", "hello")
	rec.Set("photo", models.NewFile("a.png", []byte("PNG")))
	if err := rec.Push(ctx); err != nil {
		panic(err)
	}

	photo, err := rec.GetFile("photo")
	if err != nil {
		panic(err)
	}
	content, err := c.FileContent(ctx, photo)
	if err != nil {
		panic(err)
	}

	fmt.Printf("refid: %s\n", rec.Refid())
	fmt.Printf("title: %s\n", rec.OptString("title", ""))
	fmt.Printf("photo: %s %s\n", rec.FieldType("photo"), content)

	// Output:
	// refid: record1
	// title: hello
	// photo: file PNG
}

func ExampleNewCategoriesMap() {
	server := fakeecho.NewServer("app", "key")
	server.Seed("blog", "categories", map[string]any{"refid": "news", "name": "News"})
	server.Seed("blog", "categories", map[string]any{"refid": "local", "name": "Local", "parent_refid": "news"})
	server.Seed("blog", "categories", map[string]any{"refid": "tech", "name": "Tech"})
	server.Start()
	defer server.Stop()

	c, err := echo.New(echo.Config{Domain: server.Address(), Scheme: "http", AppID: "app", AppKey: "key"})
	if err != nil {
		panic(err)
	}
	defer c.Close()

	categories := echo.NewCategoriesMap(c, "blog", "")
	if err := categories.Fetch(context.Background()); err != nil {
		panic(err)
	}

	for _, child := range categories.Children() {
		node, _ := child.Node()
		fmt.Printf("%s (%d)\n", node.OptString("name", ""), len(child.Children()))
	}

	// Output:
	// News (1)
	// Tech (0)
}
