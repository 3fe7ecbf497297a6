package main

import "geo-manager/cmd"

func main() {
	cmd.Execute()
}
