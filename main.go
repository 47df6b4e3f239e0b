package main

import "github.com/BorisDmv/techscribe-api/internal/cli"

func main() {
	cli.Execute()
}
