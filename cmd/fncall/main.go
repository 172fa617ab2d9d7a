package main

import "github.com/skosovsky/fncall/internal/cli"

func main() {
	cli.Execute()
}
