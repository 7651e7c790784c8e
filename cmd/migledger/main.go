package main

import "github.com/akhan042/migledger/internal/cli"

func main() {
	cli.Execute()
}
