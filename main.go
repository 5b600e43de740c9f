package main

import "github.com/hopebridge/donation-management/cmd"

func main() {
	cmd.Execute()
}
