package main

import "chemstore/cmd"

func main() {
	cmd.Execute()
}
