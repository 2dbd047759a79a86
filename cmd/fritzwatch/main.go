package main

import "github.com/dkemper/fritzwatch/internal/cli"

func main() {
	cli.Execute()
}
