package main

import "github.com/ppiankov/truthgate/internal/cli"

func main() {
	cli.Execute()
}
