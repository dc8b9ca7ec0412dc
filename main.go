package main

import (
	"os"

	"github.com/bucketsweep/bucketsweep/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
