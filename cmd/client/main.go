package main

import "eventkeeper/cmd/client/cmd"

func main() {
	cmd.Execute()
}
