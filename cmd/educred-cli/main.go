// educred-cli is a command-line client for issuing and verifying academic
// credential NFTs on a Cardano test network.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/educred-ke/educred-chain/config"
	"github.com/educred-ke/educred-chain/internal/auth"
	"github.com/educred-ke/educred-chain/internal/chainquery"
	"github.com/educred-ke/educred-chain/internal/digest"
	"github.com/educred-ke/educred-chain/internal/issuer"
	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/internal/verify"
	"github.com/educred-ke/educred-chain/internal/wallet"
	"github.com/educred-ke/educred-chain/pkg/types"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	dataDir := config.DefaultDataDir()
	network := ""
	endpoint := ""
	apiKey := os.Getenv("EDUCRED_API_KEY")
	logLevel := ""

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--endpoint" && len(args) > 1:
			endpoint = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--endpoint="):
			endpoint = args[0][len("--endpoint="):]
			args = args[1:]
		case args[0] == "--apikey" && len(args) > 1:
			apiKey = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--apikey="):
			apiKey = args[0][len("--apikey="):]
			args = args[1:]
		case args[0] == "--log-level" && len(args) > 1:
			logLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			logLevel = args[0][len("--log-level="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg := loadConfig(dataDir, network, endpoint, apiKey, logLevel)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "hash":
		cmdHash(cmdArgs)
	case "hash-text":
		cmdHashText(cmdArgs)
	case "mint":
		cmdMint(cfg, cmdArgs)
	case "verify":
		cmdVerify(cfg, cmdArgs)
	case "policy":
		cmdPolicy(cfg, cmdArgs)
	case "address-assets":
		cmdAddressAssets(cfg, cmdArgs)
	case "decode-name":
		cmdDecodeName(cmdArgs)
	case "params":
		cmdParams(cfg)
	case "wallet":
		cmdWallet(cfg, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: educred-cli [global flags] <command> [flags]

Global flags:
  --datadir <path>    Data directory (default: ~/.educred)
  --network <net>     mainnet, preprod (default), or preview
  --endpoint <url>    Chain query service base URL
  --apikey <key>      Chain query project key (or EDUCRED_API_KEY)
  --log-level <lvl>   trace, debug, info (default), warn, error

Commands:
  hash <file>                     Fingerprint a document (SHA-256 hex)
  hash-text <file|->              Fingerprint extracted text (normalized)

  mint --student <name> --course <c> [flags]
                                  Mint a credential NFT from the dev wallet
  verify <asset-id> [--doc <file>] [--doc-hash <hex>]
                                  Fetch a credential and check a document
  policy <policy-id>              List credentials minted under a policy
  address-assets <bech32-addr>    List non-ADA assets held by an address
  decode-name <hex>               Decode an on-chain asset name for display
  params                          Show protocol parameters in use

  wallet new                      Create an encrypted dev wallet
  wallet import --mnemonic "..."  Import a dev wallet from a mnemonic
  wallet address                  Show the dev wallet address
`)
}

// loadConfig layers defaults, the config file, and command-line overrides.
func loadConfig(dataDir, network, endpoint, apiKey, logLevel string) *config.Config {
	cfg := config.Default(config.NetworkType(networkOrDefault(network)))
	cfg.DataDir = dataDir

	values, err := config.LoadFile(cfg.ConfigFile())
	if err != nil {
		fatal("read config file: %v", err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		fatal("apply config file: %v", err)
	}

	// Command line wins over the file.
	if network != "" {
		cfg.Network = config.NetworkType(network)
		if _, fromFile := values["chainquery.endpoint"]; !fromFile && endpoint == "" {
			cfg.ChainQuery.Endpoint = config.Endpoint(cfg.Network)
		}
	}
	if endpoint != "" {
		cfg.ChainQuery.Endpoint = endpoint
	}
	if apiKey != "" {
		cfg.ChainQuery.APIKey = apiKey
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := config.Validate(cfg); err != nil {
		fatal("invalid config: %v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}
	return cfg
}

func networkOrDefault(network string) string {
	if network == "" {
		return string(config.Preprod)
	}
	return network
}

func chainClient(cfg *config.Config) *chainquery.Client {
	timeout := time.Duration(cfg.ChainQuery.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return chainquery.NewWithTimeout(cfg.ChainQuery.Endpoint, cfg.ChainQuery.APIKey, timeout)
}

func walletNetwork(cfg *config.Config) types.Network {
	if cfg.Network == config.Mainnet {
		return types.MainnetNetwork
	}
	return types.TestnetNetwork
}

// ── Document fingerprints ───────────────────────────────────────────────

func cmdHash(args []string) {
	if len(args) != 1 {
		fatal("Usage: educred-cli hash <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		fatal("open document: %v", err)
	}
	defer f.Close()

	h, err := digest.Bytes(f)
	if err != nil {
		fatal("hash document: %v", err)
	}
	fmt.Println(h)
}

func cmdHashText(args []string) {
	if len(args) != 1 {
		fatal("Usage: educred-cli hash-text <file|->")
	}
	var raw []byte
	var err error
	if args[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		fatal("read text: %v", err)
	}

	h, err := digest.Text(string(raw))
	if err != nil {
		fatal("hash text: %v", err)
	}
	fmt.Println(h)
}

// ── Minting ─────────────────────────────────────────────────────────────

func cmdMint(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	student := fs.String("student", "", "Student name")
	course := fs.String("course", "", "Course or program name")
	institution := fs.String("institution", "", "Institution that issued the certificate")
	regNumber := fs.String("reg", "", "Registration number")
	grade := fs.String("grade", "", "Grade or classification")
	level := fs.String("level", "", "Program level (degree, diploma, ...)")
	issuerName := fs.String("issuer", "", "Issuing authority display name")
	docPath := fs.String("doc", "", "Document file to fingerprint")
	docHash := fs.String("doc-hash", "", "Precomputed document hash (64 hex chars)")
	textPath := fs.String("text", "", "Extracted text file (optional)")
	fs.Parse(args)

	if *student == "" || *course == "" {
		fatal("Usage: educred-cli mint --student <name> --course <course> [--doc <file> | --doc-hash <hex>] [flags]")
	}
	if (*docPath == "") == (*docHash == "") {
		fatal("exactly one of --doc or --doc-hash is required")
	}

	cert := issuer.CertData{
		StudentName:        *student,
		Course:             *course,
		Institution:        *institution,
		RegistrationNumber: *regNumber,
		Grade:              *grade,
		ProgramLevel:       *level,
		IssuerInstitution:  *issuerName,
		DocumentHash:       *docHash,
	}
	if *docPath != "" {
		f, err := os.Open(*docPath)
		if err != nil {
			fatal("open document: %v", err)
		}
		h, err := digest.Bytes(f)
		f.Close()
		if err != nil {
			fatal("hash document: %v", err)
		}
		cert.DocumentHash = h
	}
	if *textPath != "" {
		raw, err := os.ReadFile(*textPath)
		if err != nil {
			fatal("read text file: %v", err)
		}
		th, err := digest.Text(string(raw))
		if err != nil {
			fatal("hash text: %v", err)
		}
		cert.TextHash = th
	}

	ctx := context.Background()
	client := chainClient(cfg)
	session := openDevWallet(cfg, client)

	// Authorization gate before any chain work.
	issuers, err := auth.ParseIssuers(cfg.Auth.Issuers)
	if err != nil {
		fatal("issuer whitelist: %v", err)
	}
	resolver := auth.NewResolver(auth.Config{OpenMode: cfg.Auth.OpenMode, Issuers: issuers})
	decision := resolver.Resolve(ctx, session)
	if !decision.Authorized {
		fatal("wallet is not an authorized issuer on this deployment")
	}
	if cert.IssuerInstitution == "" && !decision.OpenMode {
		cert.IssuerInstitution = decision.IssuerLabel
	}

	minter := issuer.New(issuer.Config{
		Network:     walletNetwork(cfg),
		IssuerType:  decision.IssuerLabel,
		SystemLabel: "EduCred Kenya",
	}, client)

	result, err := minter.Mint(ctx, session, cert)
	if err != nil {
		fatal("mint: %v", err)
	}

	assetID := types.AssetID(result.PolicyID, types.AssetName(result.AssetLabel))
	fmt.Printf("Credential minted!\n")
	fmt.Printf("  Tx hash:   %s\n", result.TxHash)
	fmt.Printf("  Policy:    %s\n", result.PolicyID.String())
	fmt.Printf("  Asset:     %s\n", result.AssetLabel)
	fmt.Printf("  Asset ID:  %s\n", assetID)
	fmt.Printf("  Explorer:  %s\n", config.ExplorerTxURL(cfg.Network, result.TxHash))
	fmt.Printf("             %s\n", config.ExplorerTokenURL(cfg.Network, assetID))
}

// ── Verification ────────────────────────────────────────────────────────

func cmdVerify(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	docPath := fs.String("doc", "", "Document file to check against the credential")
	docHash := fs.String("doc-hash", "", "Precomputed document hash (64 hex chars)")

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fatal("Usage: educred-cli verify <asset-id> [--doc <file>] [--doc-hash <hex>]")
	}
	assetID := args[0]
	fs.Parse(args[1:])

	ctx := context.Background()
	svc := verify.New(chainClient(cfg))

	rec, err := svc.ByAsset(ctx, assetID)
	if err != nil {
		fatal("fetch credential: %v", err)
	}
	if rec == nil {
		fatal("no credential found for asset %s", assetID)
	}

	fmt.Printf("Credential: %s\n", rec.DisplayName)
	fmt.Printf("  Asset ID: %s\n", rec.AssetID)
	for _, key := range fieldOrder {
		if v, ok := rec.Fields[key]; ok && v != "" {
			fmt.Printf("  %-20s %s\n", key+":", v)
		}
	}
	for k, v := range rec.Fields {
		if !knownField(k) && v != "" {
			fmt.Printf("  %-20s %s\n", k+":", v)
		}
	}

	want := *docHash
	if *docPath != "" {
		f, err := os.Open(*docPath)
		if err != nil {
			fatal("open document: %v", err)
		}
		want, err = digest.Bytes(f)
		f.Close()
		if err != nil {
			fatal("hash document: %v", err)
		}
	}
	if want == "" {
		return
	}

	match, err := svc.MatchesDocument(rec, want)
	if err != nil {
		fatal("check document: %v", err)
	}
	if match {
		fmt.Println("\nDocument MATCHES the on-chain fingerprint.")
	} else {
		fmt.Println("\nDocument DOES NOT MATCH the on-chain fingerprint.")
		os.Exit(2)
	}
}

// fieldOrder fixes the display order for the fields every credential
// carries; anything else prints after them.
var fieldOrder = []string{
	"name", "studentName", "course", "institution", "registrationNumber",
	"grade", "programLevel", "issuer", "issueDate", "documentHash",
	"textHash", "image", "mediaType", "standard", "system",
}

func knownField(k string) bool {
	for _, f := range fieldOrder {
		if f == k {
			return true
		}
	}
	return false
}

func cmdPolicy(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fatal("Usage: educred-cli policy <policy-id>")
	}

	svc := verify.New(chainClient(cfg))
	items, err := svc.ByPolicy(context.Background(), args[0])
	if err != nil {
		fatal("list policy assets: %v", err)
	}
	if len(items) == 0 {
		fmt.Println("No credentials found under this policy.")
		return
	}
	for _, item := range items {
		fmt.Printf("%-34s %s\n", item.DisplayName, item.AssetID)
	}
}

func cmdAddressAssets(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fatal("Usage: educred-cli address-assets <bech32-address>")
	}

	units, err := chainClient(cfg).AddressAssets(context.Background(), args[0])
	if err != nil {
		fatal("list address assets: %v", err)
	}
	if len(units) == 0 {
		fmt.Println("Address holds no non-ADA assets.")
		return
	}
	for _, u := range units {
		name := u.Unit
		if _, nameHex, err := types.SplitAssetID(u.Unit); err == nil {
			name = types.DecodeAssetName(nameHex)
		}
		fmt.Printf("%-34s x%-6s %s\n", name, u.Quantity, u.Unit)
	}
}

func cmdDecodeName(args []string) {
	if len(args) != 1 {
		fatal("Usage: educred-cli decode-name <hex-asset-name>")
	}
	fmt.Println(types.DecodeAssetName(args[0]))
}

func cmdParams(cfg *config.Config) {
	p := chainClient(cfg).ParamsOrFallback(context.Background())
	bc := p.BuilderConfig()
	fmt.Printf("Fee coefficient:      %d\n", bc.LinearFee.CoeffA)
	fmt.Printf("Fee constant:         %d\n", bc.LinearFee.ConstB)
	fmt.Printf("Coins per UTXO byte:  %d\n", bc.CoinsPerUTXOByte)
	fmt.Printf("Key deposit:          %d\n", bc.KeyDeposit)
	fmt.Printf("Pool deposit:         %d\n", bc.PoolDeposit)
	fmt.Printf("Max tx size:          %d\n", bc.MaxTxSize)
	fmt.Printf("Max value size:       %d\n", bc.MaxValueSize)
}

// ── Wallet commands ─────────────────────────────────────────────────────

func cmdWallet(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: educred-cli wallet <new|import|address>")
	}
	switch args[0] {
	case "new":
		cmdWalletNew(cfg)
	case "import":
		cmdWalletImport(cfg, args[1:])
	case "address":
		cmdWalletAddress(cfg)
	default:
		fatal("Unknown wallet command: %s\nUsage: educred-cli wallet <new|import|address>", args[0])
	}
}

func cmdWalletNew(cfg *config.Config) {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	saveWallet(cfg, mnemonic)
}

func cmdWalletImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	fs.Parse(args)

	if *mnemonic == "" {
		fatal("Usage: educred-cli wallet import --mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	saveWallet(cfg, *mnemonic)
}

func saveWallet(cfg *config.Config, mnemonic string) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}

	w, err := wallet.NewDevWalletFromSeed(seed, walletNetwork(cfg), nil)
	if err != nil {
		fatal("derive wallet: %v", err)
	}

	path := cfg.KeystorePath()
	if err := wallet.SaveKeystore(path, seed, password, string(cfg.Network)); err != nil {
		fatal("save keystore: %v", err)
	}

	// Zero seed.
	for i := range seed {
		seed[i] = 0
	}

	addr, err := w.Address().Bech32()
	if err != nil {
		fatal("encode address: %v", err)
	}
	fmt.Printf("Keystore saved: %s\n", path)
	fmt.Printf("Address: %s\n", addr)
}

func cmdWalletAddress(cfg *config.Config) {
	w := openDevWallet(cfg, nil)
	addr, err := w.Address().Bech32()
	if err != nil {
		fatal("encode address: %v", err)
	}
	fmt.Println(addr)
}

// openDevWallet unlocks the keystore and binds the wallet to the chain
// query backend.
func openDevWallet(cfg *config.Config, backend wallet.Backend) *wallet.DevWallet {
	path := cfg.KeystorePath()
	if _, err := os.Stat(path); err != nil {
		fatal("no keystore at %s (run 'educred-cli wallet new' first)", path)
	}

	password, err := readPassword("Wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	seed, network, err := wallet.LoadKeystore(path, password)
	if err != nil {
		fatal("unlock keystore: %v", err)
	}
	if network != "" && network != string(cfg.Network) {
		fatal("keystore belongs to network %q, configured network is %q", network, cfg.Network)
	}

	w, err := wallet.NewDevWalletFromSeed(seed, walletNetwork(cfg), backend)
	if err != nil {
		fatal("derive wallet: %v", err)
	}
	for i := range seed {
		seed[i] = 0
	}
	return w
}

// ── Helpers ─────────────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
