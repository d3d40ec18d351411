package main

import "github.com/mazesearch/build-web/cmd"

func main() {
	cmd.Execute()
}
