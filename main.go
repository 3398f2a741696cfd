package main

import (
	"os"

	"github.com/raushankrgupta/style-auditor/cli"
)

func main() {
	os.Exit(cli.Execute())
}
