package main

import "github.com/rpggio/streamos/cmd/streamos/root"

func main() {
	root.Execute()
}
