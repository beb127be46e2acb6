// Command webgrep crawls a set of seed URLs breadth-first, printing the
// root-to-page chain of every page whose text matches a pattern.
package main

import "github.com/webgrep/webgrep/cmd"

func main() {
	cmd.Execute()
}
