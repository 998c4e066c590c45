package main

import "github.com/KaramelBytes/recordloom-cli/cmd"

func main() {
	cmd.Execute()
}
