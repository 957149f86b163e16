package main

import "photo-rating-backend/cmd"

func main() {
	cmd.Run()
}
