package main

import (
	"os"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/cmd/vao/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(2)
	}
}
