package main

import "github.com/KaramelBytes/qolstats-cli/cmd"

func main() {
	cmd.Execute()
}
