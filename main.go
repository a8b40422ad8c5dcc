package main

import "github.com/MosYCo/test-data-generate/cmd"

func main() {
	cmd.Execute()
}
