package main

import "github.com/flyt-tools/teamstats/cmd"

func main() {
	cmd.Execute()
}
