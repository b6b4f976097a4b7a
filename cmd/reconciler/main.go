package main

import "github.com/eshaffer321/receipt-reconciler/internal/cli"

func main() {
	cli.Execute()
}
