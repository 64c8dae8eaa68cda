package main

import "canvastree/cmd/canvastree-cli/cmd"

func main() {
	cmd.Execute()
}
