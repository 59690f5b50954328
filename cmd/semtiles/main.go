package main

import "semtiles/internal/cli"

func main() {
	cli.Execute()
}
