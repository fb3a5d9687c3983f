package main

import "github.com/pdxmph/hangs-tui/internal/cli"

func main() {
	cli.Execute()
}
