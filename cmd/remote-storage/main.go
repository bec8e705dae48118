// Command remote-storage serves a key-value store over HTTP.
package main

import "github.com/nimburion/remotestore/pkg/cli"

func main() {
	cli.Execute(cli.NewRootCommand(cli.Options{
		Name:        "remote-storage",
		Description: "Key-value storage service with sqlite, redis and in-memory backends",
		EnvPrefix:   "APP",
	}))
}
