package main

import "banledger/cmd"

func main() {
	cmd.Execute()
}
