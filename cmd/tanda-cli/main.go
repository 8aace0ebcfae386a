package main

import "github.com/tandalabs/tanda-gateway/cmd/tanda-cli/cmd"

func main() {
	cmd.Execute()
}
