package main

import "github.com/veidstad/craft-tracker/cmd"

func main() {
	cmd.Execute()
}
