package main

import "bucket-diff/cmd"

func main() {
	cmd.Execute()
}
