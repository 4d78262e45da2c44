package main

import "github.com/petrobytes/probecalc-cli/cmd"

func main() {
	cmd.Execute()
}
