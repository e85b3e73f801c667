package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/kvmesh/kvmesh/internal/config"
	"github.com/kvmesh/kvmesh/pkg/kv"

	clientv3 "go.etcd.io/etcd/client/v3"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "get":
		runGet(os.Args[2:])
	case "put":
		runPut(os.Args[2:])
	case "delete":
		runDelete(os.Args[2:])
	case "prefix":
		runPrefix(os.Args[2:])
	case "hostname":
		runHostname(os.Args[2:])
	case "lease":
		runLease(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: kvmesh <command> [options]

Commands:
  get       Read the value of a key
  put       Store a value under a key
  delete    Remove a key
  prefix    List all keys under a prefix
  hostname  Report which shard serves a key
  lease     Grant a lease with a time-to-live

Run 'kvmesh <command> --help' for more information on a command.`)
}

// commandFlags holds the flags every subcommand shares.
type commandFlags struct {
	fs       *flag.FlagSet
	config   *string
	clientID *string
}

func newCommandFlags(name string) *commandFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &commandFlags{
		fs:       fs,
		config:   fs.String("config", "kvmesh.yaml", "Path to the configuration file"),
		clientID: fs.String("client-id", "", "Identifier used in diagnostics output (default: auto-generated UUID)"),
	}
}

// setup parses the remaining arguments and assembles the routing stack.
// The returned context is canceled when the process receives a
// termination signal.
func (cf *commandFlags) setup(args []string) (context.Context, kv.Client, func()) {
	if err := cf.fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*cf.config)
	if err != nil {
		fatal(err)
	}
	clientID := *cf.clientID
	if clientID == "" {
		clientID = uuid.NewString()
	}
	router, cleanup, err := newRouter(cfg, clientID)
	if err != nil {
		fatal(err)
	}

	// The routing metrics are scrapable while the command runs. A
	// port conflict with another instance is not worth aborting the
	// command over.
	closeMetrics := func() {}
	if cfg.Metrics.ListenAddr != "" {
		if ms, err := newMetricsServer(cfg.Metrics.ListenAddr); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to serve metrics on %s: %v\n", cfg.Metrics.ListenAddr, err)
		} else {
			closeMetrics = ms.Close
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx, router, func() {
		stop()
		closeMetrics()
		cleanup()
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func runGet(args []string) {
	cf := newCommandFlags("get")
	ctx, router, cleanup := cf.setup(args)
	defer cleanup()
	if cf.fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: kvmesh get [options] <key>"))
	}

	entry, err := router.Get(ctx, cf.fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	if entry == nil {
		fatal(fmt.Errorf("key %q does not exist", cf.fs.Arg(0)))
	}
	fmt.Printf("%s\n", entry.Value)
}

func runPut(args []string) {
	cf := newCommandFlags("put")
	returnPrevious := cf.fs.Bool("prev", false, "Print the previous value of the key, if any")
	ctx, router, cleanup := cf.setup(args)
	defer cleanup()
	if cf.fs.NArg() != 2 {
		fatal(fmt.Errorf("usage: kvmesh put [options] <key> <value>"))
	}

	previous, err := router.Put(ctx, cf.fs.Arg(0), cf.fs.Arg(1), &kv.PutOptions{
		ReturnPrevious: *returnPrevious,
	})
	if err != nil {
		fatal(err)
	}
	if *returnPrevious && previous != nil {
		fmt.Printf("%s\n", previous.Value)
	}
}

func runDelete(args []string) {
	cf := newCommandFlags("delete")
	ctx, router, cleanup := cf.setup(args)
	defer cleanup()
	if cf.fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: kvmesh delete [options] <key>"))
	}

	deleted, err := router.Delete(ctx, cf.fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	if !deleted {
		fatal(fmt.Errorf("key %q does not exist", cf.fs.Arg(0)))
	}
}

func runPrefix(args []string) {
	cf := newCommandFlags("prefix")
	limit := cf.fs.Int64("limit", 0, "Maximum number of entries to list (0: unlimited)")
	ctx, router, cleanup := cf.setup(args)
	defer cleanup()
	if cf.fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: kvmesh prefix [options] <prefix>"))
	}

	for entry, err := range router.GetPrefix(ctx, cf.fs.Arg(0), *limit) {
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s\t%s\n", entry.Key, entry.Value)
	}
}

func runHostname(args []string) {
	cf := newCommandFlags("hostname")
	_, router, cleanup := cf.setup(args)
	defer cleanup()

	// Without a key this reports the full shard topology.
	var key string
	if cf.fs.NArg() > 0 {
		key = cf.fs.Arg(0)
	}
	hostname, err := router.Hostname(key)
	if err != nil {
		fatal(err)
	}
	fmt.Println(hostname)
}

func runLease(args []string) {
	cf := newCommandFlags("lease")
	ttl := cf.fs.Int64("ttl", 60, "Time-to-live of the lease in seconds")
	revoke := cf.fs.Int64("revoke", 0, "Revoke the lease with the given ID instead of granting one")
	ctx, router, cleanup := cf.setup(args)
	defer cleanup()

	if *revoke != 0 {
		if err := router.RevokeLease(ctx, clientv3.LeaseID(*revoke)); err != nil {
			fatal(err)
		}
		return
	}
	leaseID, err := router.GrantLease(ctx, *ttl)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%d\n", leaseID)
}
