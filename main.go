package main

import "dynoquery/cmd"

func main() {
	cmd.Execute()
}
