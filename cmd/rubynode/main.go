// Command rubynode runs a nohros ruby node: the message channel, the node and
// control loops, and the optional admin servers.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
