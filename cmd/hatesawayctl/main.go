package main

import (
	"fmt"
	"os"
)

func main() {
	root, release := newRootCmd(openGallery)
	err := root.Execute()
	release()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
