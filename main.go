package main

import "clockfix/cmd"

func main() {
	cmd.Execute()
}
