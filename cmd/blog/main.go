// Command blog serves and administers a blog.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "blog: %v\n", err)
		os.Exit(1)
	}
}
