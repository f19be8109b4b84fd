package main

import (
	"os"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/cli"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
