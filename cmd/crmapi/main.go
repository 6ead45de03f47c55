package main

import "github.com/hearthstone-labs/crm/cmd/crmapi/cmd"

func main() {
	cmd.Execute()
}
