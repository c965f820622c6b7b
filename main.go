package main

import "mubench-review/cmd"

func main() {
	cmd.Execute()
}
