package main

import "github.com/akustiklab/telaffuz/cmd"

func main() {
	cmd.Execute()
}
