package main

import "github.com/depaym-network/depaym/internal/cli"

func main() {
	cli.Execute()
}
