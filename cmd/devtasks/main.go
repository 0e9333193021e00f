package main

import (
	"os"

	"github.com/dianegit/develops-task-management/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
