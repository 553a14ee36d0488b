package main

import (
	"os"

	"github.com/wys-platform/prices/cmd/prices/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
