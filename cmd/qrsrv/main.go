package main

import "github.com/kyriemtx/qrsrv/internal/cmd"

func main() {
	cmd.Execute()
}
