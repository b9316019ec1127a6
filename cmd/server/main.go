package main

import "dotplatform/internal/app/server"

func main() {
	server.Run()
}
