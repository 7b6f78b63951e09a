package main

import (
	"livegate.io/infrastructure"
	"livegate.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	infrastructure.StartServer()
}
