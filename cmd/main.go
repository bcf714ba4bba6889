package main

import "github.com/SystemBuilders/StripeKey/internal/cli"

func main() {
	cli.Execute()
}
