package main

import "github.com/embermesh/embermesh/cmd"

func main() {
	cmd.Execute()
}
