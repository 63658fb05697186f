package main

import "sample-fetch/internal/cli"

func main() {
	cli.Execute()
}
