package main

import "github.com/andyrewlee/g3console/internal/cli"

func main() {
	cli.Execute()
}
