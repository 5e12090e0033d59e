package main

import (
	"os"

	"github.com/leeveo/quizz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
