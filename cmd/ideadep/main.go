package main

import (
	"ideadep/internal/cli"
)

func main() {
	cli.Execute()
}
