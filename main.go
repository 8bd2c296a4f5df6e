package main

import "github.com/KaramelBytes/coexnet/cmd"

func main() {
	cmd.Execute()
}
