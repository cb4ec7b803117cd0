package main

import "github.com/plantquery/plantquery/internal/cli"

func main() {
	cli.Execute()
}
