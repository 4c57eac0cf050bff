package main

import (
	"os"

	"jobvacancies/backend/cmd/vacancyctl/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
