package main

import "github.com/tonimelisma/onedrive-sdk-go/cmd"

func main() {
	cmd.Execute()
}
