package main

import "github.com/pseudoincorrect/quickfind/internal/cli"

func main() {
	cli.Execute()
}
