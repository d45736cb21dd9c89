package main

import "github.com/GurdipSCode/devops-mondoo-scanner/pkg/cli"

func main() {
	cli.Execute()
}
