// Package main implements the playbooks command.
// It serves the playbooks HTTP gateway and prints its API description.
package main

import "github.com/amphitheatre-app/playbooks/cmd/playbooks/cmd"

func main() {
	cmd.Execute()
}
