// Command kvs-client is a one-shot TCP client for a running kvs-server,
// exposing the three wire-protocol operations as subcommands.
//
// Usage:
//
//	kvs-client --addr 127.0.0.1:4000 get <KEY>
//	kvs-client --addr 127.0.0.1:4000 set <KEY> <VALUE>
//	kvs-client --addr 127.0.0.1:4000 rm <KEY>
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/stratadb/strata/internal/client"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "server address (IP:PORT)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cmd, rest := args[0], args[1:]

	c, err := client.Dial(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kvs-client: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	var runErr error
	switch cmd {
	case "get":
		runErr = runGet(c, rest)
	case "set":
		runErr = runSet(c, rest)
	case "rm":
		runErr = runRemove(c, rest)
	default:
		usage()
		os.Exit(1)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "kvs-client: %v\n", runErr)
		os.Exit(1)
	}
}

func runGet(c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get <KEY>")
	}
	value, found, err := c.Get([]byte(args[0]))
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("Key not found")
		return nil
	}
	fmt.Println(string(value))
	return nil
}

func runSet(c *client.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <KEY> <VALUE>")
	}
	return c.Set([]byte(args[0]), []byte(args[1]))
}

func runRemove(c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <KEY>")
	}
	return c.Remove([]byte(args[0]))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client [--addr IP:PORT] <get|set|rm> ...")
}
