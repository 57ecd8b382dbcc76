package main

import "github.com/meisaku/ms-go-user/cmd"

func main() {
	cmd.Execute()
}
