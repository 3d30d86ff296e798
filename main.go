package main

import (
	"os"

	"github.com/rguichard/jtriage/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
