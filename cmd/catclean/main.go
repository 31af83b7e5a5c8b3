package main

import "github.com/mchmarny/catclean/pkg/cli"

func main() {
	cli.Execute()
}
