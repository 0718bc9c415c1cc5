package main

import "github.com/endorses/lexmatch/cmd"

func main() {
	cmd.Execute()
}
