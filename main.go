package main

import "github.com/KaramelBytes/discount-impact/cmd"

func main() {
	cmd.Execute()
}
