package main

import (
	"github.com/handoff-dev/handoff/cmd/root"
)

func main() {
	root.Execute()
}
