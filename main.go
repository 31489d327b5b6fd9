package main

import "github.com/pairview/pairview/cmd"

func main() {
	cmd.Execute()
}
