package main

import "github.com/example/studyplanner/cmd"

func main() {
	cmd.Execute()
}
