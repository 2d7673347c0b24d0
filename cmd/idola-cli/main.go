package main

import "idola-backend/cmd/idola-cli/cmd"

func main() {
	cmd.Execute()
}
