package main

import "github.com/genelens/genelens-cli/cmd"

func main() {
	cmd.Execute()
}
