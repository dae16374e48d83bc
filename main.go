package main

import "github.com/brogergvhs/mangaup/cmd"

func main() {
	cmd.Execute()
}
