package main

import "github.com/mcoot/eventide-gm/internal/cli"

func main() {
	cli.Execute()
}
