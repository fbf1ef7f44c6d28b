package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"harken/internal/ipc"
)

func main() {
	socketPath := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		fmt.Println("usage: harken-ctl [--socket path] pause|resume|status|history|say <text>|exit")
		os.Exit(2)
	}

	cmd := args[0]
	arg := strings.Join(args[1:], " ")

	reply, err := ipc.Send(*socketPath, cmd, arg)
	if err != nil {
		fmt.Println("harken-daemon not running:", err)
		os.Exit(1)
	}
	if reply.Text != "" {
		fmt.Println(reply.Text)
	}
	if !reply.OK {
		os.Exit(1)
	}
}
