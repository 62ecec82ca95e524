package main

import (
	"os"

	"github.com/fzft/go-resp/cmd"
)

func main() {
	if err := cmd.Execute(Version()); err != nil {
		os.Exit(1)
	}
}
