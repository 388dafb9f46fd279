package main

import "github.com/jtoivan/ripasso/cmd"

func main() {
	cmd.Execute()
}
