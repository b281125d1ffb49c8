package main

import (
	"fmt"
	"os"

	"github.com/trezcool/nabha/core"
)

func main() {
	if err := newRootCommand(core.NewConfig()).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
