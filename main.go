// Package main is the entry point for the sift CLI.
package main

import "github.com/mouse-blink/sift/cmd"

func main() {
	cmd.Execute()
}
