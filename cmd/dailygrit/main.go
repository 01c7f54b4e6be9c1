package main

import "github.com/Miandari/dailygrit/internal/cli"

func main() {
	cli.Execute()
}
