package main

import "github.com/jcdickinson/docdeck/cmd"

func main() {
	cmd.Execute()
}
