// Package main is the entry point for the mockcheck CLI.
package main

import "mockcheck.dev/pkg/mockcheck/cmd"

func main() {
	cmd.Execute()
}
