package main

import "thrift-swap-backend/cmd"

func main() {
	cmd.Run()
}
