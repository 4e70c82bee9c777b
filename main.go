package main

import "replay-manager/cmd"

func main() {
	cmd.Execute()
}
