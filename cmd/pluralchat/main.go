package main

import "plural-chat/internal/cli"

func main() {
	cli.Execute()
}
