package main

import "github.com/terraconstructs/taskapi/cmd/taskapi/cmd"

func main() {
	cmd.Execute()
}
