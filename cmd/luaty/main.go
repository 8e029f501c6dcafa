package main

import "github.com/panyam/luaty/cmd/luaty/commands"

func main() {
	commands.Execute()
}
