// The main package for the newsbrief command-line tool.
package main

import (
	"newsbrief/cmd"
)

func main() {
	cmd.Execute()
}
