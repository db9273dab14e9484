package main

import (
	"os"

	"dbdesigner/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
