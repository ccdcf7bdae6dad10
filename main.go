package main

import "github.com/Thirumurugan7/Web3-Lottery-app/cmd"

func main() {
	cmd.Execute()
}
