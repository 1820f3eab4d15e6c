package main

import "github.com/kamal-hamza/webpaste/cmd"

func main() {
	cmd.Execute()
}
