package main

import "github.com/KaramelBytes/echoloom-cli/cmd"

func main() {
	cmd.Execute()
}
