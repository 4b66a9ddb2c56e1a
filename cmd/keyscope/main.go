// Command keyscope checks, lists and exercises keyscope key map documents.
package main

import "os"

func main() {
	os.Exit(execute())
}
