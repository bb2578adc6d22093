package main

import "github.com/oshokin/release-catalog/cmd/release-catalog/cmd"

func main() {
	cmd.Execute()
}
