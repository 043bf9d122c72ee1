package main

import (
	"os"

	"github.com/dshills/devboot/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
