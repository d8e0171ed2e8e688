package main

import (
	"os"

	"github.com/ozdemircibaris/youtube-video-generator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
