package main

import "github.com/echopf/echo.go/internal/cli"

func main() {
	cli.Execute()
}
