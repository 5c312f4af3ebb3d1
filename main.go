package main

import "github.com/rparikh-liberate/smart-rpa-poc/cmd"

func main() {
	cmd.Execute()
}
