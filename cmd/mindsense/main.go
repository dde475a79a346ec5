package main

import (
	"os"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
