package main

import "github.com/Loskoss/Productivity-Tracker/cmd"

func main() {
	cmd.Execute()
}
