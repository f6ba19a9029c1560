package main

import (
	"os"

	"github.com/3-lines-studio/prerender/cmd/prerender/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
