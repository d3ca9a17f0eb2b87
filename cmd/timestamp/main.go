package main

import (
	"github.com/onflow/flow-timestamp/cmd/timestamp/cmd"
)

func main() {
	cmd.Execute()
}
