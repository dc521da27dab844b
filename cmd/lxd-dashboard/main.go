package main

import (
	"os"

	"github.com/rflorenc/lxd-resource-dashboard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
