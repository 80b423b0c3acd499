package main

import "github.com/Abraxas-365/install-peerdeps/internal/cli"

func main() {
	cli.Execute()
}
