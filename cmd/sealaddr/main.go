package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"sealaddr.dev/sealaddr/directory"
	"sealaddr.dev/sealaddr/model"
	"sealaddr.dev/sealaddr/netaddr"
	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/secrets"
	"sealaddr.dev/sealaddr/storage/registry"

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
	case "addr":
		return cmdAddr(args[1:], out, errOut)
	case "seal":
		return cmdSeal(args[1:], out, errOut)
	case "open":
		return cmdOpen(args[1:], out, errOut)
	case "publish":
		return cmdPublish(args[1:], out, errOut)
	case "scan":
		return cmdScan(args[1:], out, errOut)
	case "secret":
		return cmdSecret(args[1:], out, errOut)
	case "handshake-key":
		return cmdHandshakeKey(args[1:], out, errOut)
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
	fmt.Fprintln(w, "sealaddr: sealed network address CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sealaddr addr build (--ip4 <a.b.c.d> | --ip6 <addr> | --dns <name>) [--port <n>] [--session-id <32hex>] [--noise-key <64hex>] [--handshake-version <n>]")
	fmt.Fprintln(w, "  sealaddr addr inspect <hex>")
	fmt.Fprintln(w, "  sealaddr seal --account <32hex> --index <n> --seq <n> (--secret <name> | --secret-hex <hex>) <addr flags>")
	fmt.Fprintln(w, "  sealaddr open --record <hex> (--secret <name> | --secret-hex <hex>)")
	fmt.Fprintln(w, "  sealaddr publish --account <32hex> --index <n> [--seq <n>] (--secret <name> | --secret-hex <hex>) --backend <name> [backend flags] <addr flags>")
	fmt.Fprintln(w, "  sealaddr scan --account <32hex> (--secret <name> | --secret-hex <hex>) --backend <name> [backend flags]")
	fmt.Fprintln(w, "  sealaddr secret init --name <name> [--secret-hex <hex>] [--force]")
	fmt.Fprintln(w, "  sealaddr secret list")
	fmt.Fprintln(w, "  sealaddr secret fingerprint --name <name>")
	fmt.Fprintln(w, "  sealaddr secret export --name <name>")
	fmt.Fprintln(w, "  sealaddr handshake-key gen")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - addresses are printed as versioned wire bytes in hex")
	fmt.Fprintln(w, "  - secrets live under ~/.sealaddr/secrets (0600 hex seed files)")
	fmt.Fprintln(w, "  - publish picks the next sequence number from ~/.sealaddr/sequence unless --seq is given")
	fmt.Fprintln(w, "  - scan never fails on unreadable records; they are listed in the report as skipped")
}

// addrFlags collects the protocol stack flags shared by addr build, seal and
// publish. Exactly one of ip4/ip6/dns must be set.
type addrFlags struct {
	ip4              string
	ip6              string
	dns              string
	port             int
	sessionID        string
	noiseKey         string
	handshakeVersion int
}

func (f *addrFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&f.ip4, "ip4", "", "IPv4 address literal")
	fs.StringVar(&f.ip6, "ip6", "", "IPv6 address literal")
	fs.StringVar(&f.dns, "dns", "", "DNS name")
	fs.IntVar(&f.port, "port", -1, "Transport port")
	fs.StringVar(&f.sessionID, "session-id", "", "Memcom session id as 32 hex chars")
	fs.StringVar(&f.noiseKey, "noise-key", "", "Noise IK public key as 64 hex chars")
	fs.IntVar(&f.handshakeVersion, "handshake-version", -1, "Handshake protocol version (0-255)")
}

func (f *addrFlags) build() (netaddr.NetworkAddress, error) {
	var protos []netaddr.Protocol

	set := 0
	for _, s := range []string{f.ip4, f.ip6, f.dns} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return netaddr.NetworkAddress{}, fmt.Errorf("exactly one of --ip4, --ip6, --dns is required")
	}

	switch {
	case f.ip4 != "":
		ip := net.ParseIP(f.ip4)
		if ip == nil {
			return netaddr.NetworkAddress{}, fmt.Errorf("invalid --ip4: %q", f.ip4)
		}
		p, err := netaddr.IP4FromIP(ip)
		if err != nil {
			return netaddr.NetworkAddress{}, err
		}
		protos = append(protos, p)
	case f.ip6 != "":
		ip := net.ParseIP(f.ip6)
		if ip == nil {
			return netaddr.NetworkAddress{}, fmt.Errorf("invalid --ip6: %q", f.ip6)
		}
		p, err := netaddr.IP6FromIP(ip)
		if err != nil {
			return netaddr.NetworkAddress{}, err
		}
		protos = append(protos, p)
	case f.dns != "":
		p, err := netaddr.NewDNSName(f.dns)
		if err != nil {
			return netaddr.NetworkAddress{}, err
		}
		protos = append(protos, p)
	}

	if f.port >= 0 {
		if f.port > 0xffff {
			return netaddr.NetworkAddress{}, fmt.Errorf("invalid --port: %d", f.port)
		}
		protos = append(protos, netaddr.Port(f.port))
	}
	if f.sessionID != "" {
		b, err := hex.DecodeString(f.sessionID)
		if err != nil || len(b) != 16 {
			return netaddr.NetworkAddress{}, fmt.Errorf("invalid --session-id: want 32 hex chars")
		}
		var sid netaddr.MemcomSessionID
		copy(sid[:], b)
		protos = append(protos, sid)
	}
	if f.noiseKey != "" {
		b, err := hex.DecodeString(f.noiseKey)
		if err != nil || len(b) != 32 {
			return netaddr.NetworkAddress{}, fmt.Errorf("invalid --noise-key: want 64 hex chars")
		}
		var pub netaddr.NoiseIKPublicKey
		copy(pub[:], b)
		protos = append(protos, pub)
	}
	if f.handshakeVersion >= 0 {
		if f.handshakeVersion > 0xff {
			return netaddr.NetworkAddress{}, fmt.Errorf("invalid --handshake-version: %d", f.handshakeVersion)
		}
		protos = append(protos, netaddr.HandshakeVersion(f.handshakeVersion))
	}

	return netaddr.New(protos...)
}

// secretFlags selects a master secret by stored name or inline hex.
type secretFlags struct {
	name      string
	secretHex string
}

func (f *secretFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&f.name, "secret", "", "Stored secret name (from 'sealaddr secret init')")
	fs.StringVar(&f.secretHex, "secret-hex", "", "Master secret as hex (at least 32 hex chars)")
}

func (f *secretFlags) load() (seal.MasterSecret, error) {
	if f.name != "" && f.secretHex != "" {
		return nil, fmt.Errorf("conflicting flags: --secret cannot be combined with --secret-hex")
	}
	if f.secretHex != "" {
		return secrets.ParseSecretHex(f.secretHex)
	}
	if f.name == "" {
		return nil, fmt.Errorf("missing secret: use --secret or --secret-hex")
	}
	store, err := secrets.Open("")
	if err != nil {
		return nil, err
	}
	return store.Get(f.name)
}

func cmdAddr(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: sealaddr addr <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: build, inspect")
		return 2
	}
	switch args[0] {
	case "build":
		fs := flag.NewFlagSet("addr build", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var af addrFlags
		af.add(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		addr, err := af.build()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		raw, err := netaddr.EncodeRaw(addr, netaddr.Version1)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		_, _ = fmt.Fprintln(out, hex.EncodeToString(raw.Bytes()))
		return 0
	case "inspect":
		fs := flag.NewFlagSet("addr inspect", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: sealaddr addr inspect <hex>")
			return 2
		}
		b, err := hex.DecodeString(strings.TrimSpace(fs.Arg(0)))
		if err != nil {
			fmt.Fprintf(errOut, "invalid hex: %v\n", err)
			return 2
		}
		raw, err := netaddr.ParseRaw(b)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		addr, err := raw.Decode()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintf(out, "version: %d\n", raw.Version)
		fmt.Fprintf(out, "address: %s\n", addr)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown addr subcommand: %s\n", args[0])
		return 2
	}
}

func cmdSeal(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("seal", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var af addrFlags
	var sf secretFlags
	var accountHex string
	var index uint
	var seq uint64
	af.add(fs)
	sf.add(fs)
	fs.StringVar(&accountHex, "account", "", "Account id as 32 hex chars")
	fs.UintVar(&index, "index", 0, "Address slot index (0-255)")
	fs.Uint64Var(&seq, "seq", 0, "Sequence number for this slot")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	rec, _, code := sealRecord(af, sf, accountHex, index, seq, errOut)
	if code != 0 {
		return code
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(rec.Marshal()))
	return 0
}

func sealRecord(af addrFlags, sf secretFlags, accountHex string, index uint, seq uint64, errOut io.Writer) (*seal.EncNetworkAddress, netaddr.NetworkAddress, int) {
	if accountHex == "" {
		fmt.Fprintln(errOut, "missing --account")
		return nil, netaddr.NetworkAddress{}, 2
	}
	account, err := seal.ParseAccountID(accountHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --account: %v\n", err)
		return nil, netaddr.NetworkAddress{}, 2
	}
	if index > 0xff {
		fmt.Fprintf(errOut, "invalid --index: %d\n", index)
		return nil, netaddr.NetworkAddress{}, 2
	}
	secret, err := sf.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, netaddr.NetworkAddress{}, 2
	}
	addr, err := af.build()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, netaddr.NetworkAddress{}, 2
	}
	rec, err := seal.Encrypt(addr, secret, account, uint8(index), seq)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, netaddr.NetworkAddress{}, 1
	}
	return rec, addr, 0
}

func cmdOpen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf secretFlags
	var recordHex string
	sf.add(fs)
	fs.StringVar(&recordHex, "record", "", "Sealed record as hex")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if recordHex == "" {
		fmt.Fprintln(errOut, "missing --record")
		return 2
	}
	b, err := hex.DecodeString(strings.TrimSpace(recordHex))
	if err != nil {
		fmt.Fprintf(errOut, "invalid --record hex: %v\n", err)
		return 2
	}
	secret, err := sf.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	rec, err := seal.Unmarshal(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	addr, err := rec.Decrypt(secret)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "account: %s\n", rec.AccountID)
	fmt.Fprintf(out, "index: %d\n", rec.AddressIndex)
	fmt.Fprintf(out, "seq: %d\n", rec.SequenceNumber)
	fmt.Fprintf(out, "address: %s\n", addr)
	return 0
}

func cmdPublish(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var af addrFlags
	var sf secretFlags
	var accountHex string
	var index uint
	var seq uint64
	var seqSet bool
	var backend string
	af.add(fs)
	sf.add(fs)
	fs.StringVar(&accountHex, "account", "", "Account id as 32 hex chars")
	fs.UintVar(&index, "index", 0, "Address slot index (0-255)")
	fs.Uint64Var(&seq, "seq", 0, "Sequence number (default: next from the local counter)")
	fs.StringVar(&backend, "backend", "localstore", "Record store backend name")
	registry.RegisterFlags(fs, registry.UsageCLI)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seq" {
			seqSet = true
		}
	})

	var seqSource secrets.SequenceSource
	if !seqSet {
		account, err := seal.ParseAccountID(accountHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --account: %v\n", err)
			return 2
		}
		dir, err := defaultSequenceDir()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		seqSource, err = secrets.NewFileSequence(dir)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		seq, err = seqSource.Next(account, uint8(index))
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	rec, addr, code := sealRecord(af, sf, accountHex, index, seq, errOut)
	if code != 0 {
		return code
	}

	store, closeFn, err := registry.Open(backend, registry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, model.NewError(model.ErrMissingStore, err.Error()))
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := store.Append(rec.Marshal())
	if err != nil {
		fmt.Fprintln(errOut, model.MapErr(err))
		return 1
	}
	if seqSource != nil {
		if err := seqSource.MarkUsed(rec.AccountID, rec.AddressIndex, seq); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	receipt := model.NewPublishReceipt(rec, addr.String(), id.String())
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(receipt); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdScan(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf secretFlags
	var accountHex string
	var backend string
	sf.add(fs)
	fs.StringVar(&accountHex, "account", "", "Account id as 32 hex chars")
	fs.StringVar(&backend, "backend", "localstore", "Record store backend name")
	registry.RegisterFlags(fs, registry.UsageCLI)

	if err := fs.Parse(args); err != nil {
		return 2
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
	secret, err := sf.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	store, closeFn, err := registry.Open(backend, registry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, model.NewError(model.ErrMissingStore, err.Error()))
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	report, err := directory.Scan(store, account, secret)
	if err != nil {
		fmt.Fprintln(errOut, model.MapErr(err))
		return 1
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(model.FromScan(report)); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdSecret(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printSecretUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdSecretInit(args[1:], out, errOut)
	case "list":
		return cmdSecretList(args[1:], out, errOut)
	case "fingerprint":
		return cmdSecretFingerprint(args[1:], out, errOut)
	case "export":
		return cmdSecretExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printSecretUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown secret subcommand: %s\n\n", args[0])
		printSecretUsage(errOut)
		return 2
	}
}

func printSecretUsage(w io.Writer) {
	fmt.Fprintln(w, "sealaddr secret: minimal local master secret management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sealaddr secret init --name <name> [--secret-hex <hex>] [--force]")
	fmt.Fprintln(w, "  sealaddr secret list")
	fmt.Fprintln(w, "  sealaddr secret fingerprint --name <name>")
	fmt.Fprintln(w, "  sealaddr secret export --name <name>")
}

func cmdSecretInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("secret init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var secretHex string
	var force bool
	fs.StringVar(&name, "name", "", "Secret name (file under ~/.sealaddr/secrets)")
	fs.StringVar(&secretHex, "secret-hex", "", "Optional master secret as hex (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite an existing secret file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := secrets.CheckName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}

	var secret seal.MasterSecret
	if secretHex != "" {
		var err error
		secret, err = secrets.ParseSecretHex(secretHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --secret-hex: %v\n", err)
			return 2
		}
	} else {
		secret = make(seal.MasterSecret, 32)
		if _, err := rand.Read(secret); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	store, err := secrets.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	path, err := store.Put(name, secret, force)
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "wrote %s\n", path)
	_, _ = fmt.Fprintln(out, secrets.Fingerprint(secret))
	return 0
}

func cmdSecretList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("secret list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store, err := secrets.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	names, err := store.List()
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	for _, name := range names {
		secret, err := store.Get(name)
		if err != nil {
			fmt.Fprintf(errOut, "secrets: %s: %v\n", name, err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\n", name, secrets.Fingerprint(secret))
	}
	return 0
}

func cmdSecretFingerprint(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("secret fingerprint", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var name string
	fs.StringVar(&name, "name", "", "Secret name")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}

	store, err := secrets.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	secret, err := store.Get(name)
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, secrets.Fingerprint(secret))
	return 0
}

func cmdSecretExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("secret export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var name string
	fs.StringVar(&name, "name", "", "Secret name")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}

	store, err := secrets.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	secret, err := store.Get(name)
	if err != nil {
		fmt.Fprintf(errOut, "secrets: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(secret))
	return 0
}

func cmdHandshakeKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "gen" {
		fmt.Fprintln(errOut, "usage: sealaddr handshake-key gen")
		return 2
	}
	fs := flag.NewFlagSet("handshake-key gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	pub, priv, err := netaddr.GenerateHandshakeKey(rand.Reader)
	if err != nil {
		fmt.Fprintf(errOut, "keygen: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "Public-Key: %s\n", hex.EncodeToString(pub[:]))
	_, _ = fmt.Fprintln(out, hex.EncodeToString(priv[:]))
	return 0
}

func defaultSequenceDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sealaddr", "sequence"), nil
}
