package main

import "config-packager/internal/cli"

func main() {
	cli.Execute()
}
