package main

import (
	"github.com/taiwan-rail-tools/thsrbook/cmd"
)

func main() {
	cmd.Execute()
}
