package main

import "inkbound/cmd"

func main() {
	cmd.Run()
}
