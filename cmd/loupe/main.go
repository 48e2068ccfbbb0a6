package main

import "github.com/atikulmunna/loupe/internal/cmd"

func main() {
	cmd.Execute()
}
