package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, loadDependencies).Execute(); err != nil {
		os.Exit(1)
	}
}
