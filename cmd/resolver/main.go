package main

import "github.com/user/banner-resolver/cmd/resolver/cmd"

func main() {
	cmd.Execute()
}
