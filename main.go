package main

import (
	"os"

	"github.com/abhisek/studypath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
