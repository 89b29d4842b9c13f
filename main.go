package main

import "github.com/adaptik3d/adaptik/cmd"

func main() {
	cmd.Execute()
}
