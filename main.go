package main

import "imgmin/cmd"

func main() {
	cmd.Execute()
}
