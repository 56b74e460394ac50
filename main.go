// The main package for the govjobs executable.
package main

import (
	"github.com/JakeFAU/govjobs-ingestor/cmd"
)

func main() {
	cmd.Execute()
}
