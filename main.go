package main

import "github.com/theirongolddev/mchango/cmd"

func main() {
	cmd.Execute()
}
