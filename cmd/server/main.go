package main

import "hrmpay/internal/app/server"

func main() {
	server.Run()
}
