package main

import "github.com/mcoot/tarot-go2/internal/cli"

func main() {
	cli.Execute()
}
