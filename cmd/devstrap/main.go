package main

import "github.com/devstrap/devstrap/cmd"

func main() {
	cmd.Execute()
}
