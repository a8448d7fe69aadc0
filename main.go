package main

import (
	"os"

	"github.com/codepet/codepet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
