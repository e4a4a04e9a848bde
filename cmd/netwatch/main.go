package main

import "github.com/vietddude/netwatch/internal/cli"

func main() {
	cli.Execute()
}
