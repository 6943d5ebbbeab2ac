package main

import "github.com/notargets/lesfilter/cmd"

func main() {
	cmd.Execute()
}
