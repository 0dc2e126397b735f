package main

import "github.com/BAWES-Universe/workadventure-universe/internal/cli"

func main() {
	cli.Execute()
}
