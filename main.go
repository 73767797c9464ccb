package main

import "gigflow/cmd"

func main() {
	cmd.Execute()
}
