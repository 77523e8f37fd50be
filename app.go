package main

import "github.com/masmgr/logfollow-go/cmd"

func main() {
	cmd.Run()
}
