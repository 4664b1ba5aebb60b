package main

import "github.com/fbz-tec/pggeojson/cmd"

func main() {
	cmd.Execute()
}
