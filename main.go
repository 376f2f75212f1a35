package main

import "github.com/suncoastbuild/sitegen/cmd"

func main() {
	cmd.Execute()
}
