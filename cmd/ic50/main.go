package main

import "github.com/arloliu/ic50/internal/cli"

func main() {
	cli.Execute()
}
