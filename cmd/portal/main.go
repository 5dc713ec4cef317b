package main

import "insurance-portal/internal/cmd"

func main() {
	cmd.Execute()
}
