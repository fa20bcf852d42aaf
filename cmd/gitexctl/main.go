package main

import "github.com/elguarir/gitex-assistant/internal/cli"

func main() {
	cli.Execute()
}
