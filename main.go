package main

import "github.com/jjenkins/legtrack/cmd"

func main() {
	cmd.Execute()
}
