package main

import "github.com/philtim/cityclock/cmd"

func main() {
	cmd.Execute()
}
