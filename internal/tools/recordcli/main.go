package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/storage"
	"sealaddr.dev/sealaddr/storage/registry"
	"sealaddr.dev/sealaddr/storage/storeconfig"

	_ "sealaddr.dev/sealaddr/storage/grpcstore"
	_ "sealaddr.dev/sealaddr/storage/localstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "append":
		return cmdAppend(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "candidates":
		return cmdCandidates(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "recordcli: minimal record store tool for walkthroughs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  recordcli append --backend localstore --localstore-dir <dir> <record-file>")
	fmt.Fprintln(w, "  recordcli get --backend localstore --localstore-dir <dir> --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  recordcli candidates --backend localstore --localstore-dir <dir> --account <32hex>")
	fmt.Fprintln(w, "  recordcli append --backend grpc --grpc-target <host:port> <record-file>")
	fmt.Fprintln(w, "  recordcli append --store-config <stores.json> <record-file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - grpc backend talks to sealaddr-recordd (or any record store gRPC server)")
	fmt.Fprintln(w, "  - --store-config opens backends from a JSON config instead of --backend")
	fmt.Fprintln(w, "  - records are content addressed (CIDv1 raw + sha2-256)")
}

type commonFlags struct {
	backend      string
	configPath   string
	listBackends bool
}

func (c *commonFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "localstore", "Record store backend name")
	fs.StringVar(&c.configPath, "store-config", "", "JSON store config (overrides --backend)")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	registry.RegisterFlags(fs, registry.UsageCLI)
}

func (c *commonFlags) openStore() (storage.RecordStore, func() error, error) {
	if c.configPath != "" {
		cfg, err := storeconfig.LoadFile(c.configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(registry.UsageCLI, "")
	}
	return registry.Open(c.backend, registry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range registry.List(registry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdAppend(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: recordcli append [common flags] <record-file>")
		return 2
	}

	store, closeFn, err := common.openStore()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, err := store.Append(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStr string
	var outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: recordcli get [common flags] --cid <cid> [--out <file>]")
		return 2
	}

	store, closeFn, err := common.openStore()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}

	b, err := store.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdCandidates(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("candidates", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var accountHex string
	fs.StringVar(&accountHex, "account", "", "Account id as 32 hex chars")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if accountHex == "" {
		fmt.Fprintln(errOut, "missing --account")
		return 2
	}
	account, err := seal.ParseAccountID(accountHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --account: %v\n", err)
		return 2
	}

	store, closeFn, err := common.openStore()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	candidates, err := store.Candidates(account)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	for _, c := range candidates {
		_, _ = fmt.Fprintf(out, "%s\t%s\n", c.CID, hex.EncodeToString(c.Record))
	}
	return 0
}
