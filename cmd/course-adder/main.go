package main

import "github.com/pfrederiksen/course-adder/internal/cli"

func main() {
	cli.Execute()
}
