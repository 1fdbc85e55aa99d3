package main

import "github.com/oshokin/activity-monitor/cmd/activity-monitor/cmd"

func main() {
	cmd.Execute()
}
