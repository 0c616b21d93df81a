package main

import (
	"os"

	"github.com/james-orcales/ordered/sh"
)

func main() {
	ok := sh.Spawn(
		"go",
		"test",
		"./contains",
		"./invariant",
		"./sh",
		"./snap",
		"./xdebug",
		"-count=1",
	)
	if !ok {
		os.Exit(1)
	}
}
