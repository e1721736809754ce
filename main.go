package main

import (
	"log"

	"github.com/thiagokokada/git-status-watch/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("git-status-watch: %v", err)
	}
}
