// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/wirecap/pkg/plugin"
	"firestige.xyz/wirecap/plugins/reporter/console"
	"firestige.xyz/wirecap/plugins/reporter/pcap"
)

func init() {
	// Register reporter plugins
	plugin.RegisterReporter(console.Name, console.NewConsoleReporter)
	plugin.RegisterReporter(pcap.Name, pcap.NewPcapReporter)
}
