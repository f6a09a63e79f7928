// Package issuer assembles, signs and submits credential minting
// transactions.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/educred-ke/educred-chain/internal/chainquery"
	"github.com/educred-ke/educred-chain/internal/digest"
	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/internal/wallet"
	"github.com/educred-ke/educred-chain/pkg/tx"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// MintOutputLovelace is the fixed ADA margin paid alongside the minted
// asset, comfortably above the minimum-UTXO requirement for a one-asset
// output.
const MintOutputLovelace = 2_000_000

// MetadataStandard is the value of the metadata "standard" field.
const MetadataStandard = "CIP-25"

// DefaultImage is the display image pointer embedded in every credential.
// Wallets and explorers require an image field to render a token as an NFT;
// credentials share one placeholder until per-institution artwork exists.
const (
	DefaultImage     = "ipfs://QmPlaceholder"
	DefaultMediaType = "image/png"
)

// Issuer errors.
var (
	ErrWrongNetwork     = errors.New("wallet is not on the expected network")
	ErrNotBaseAddress   = errors.New("not a base address, cannot extract key hash")
	ErrNoPaymentKeyHash = errors.New("no payment key hash found")
	ErrNoFunds          = errors.New("no UTXOs found in wallet, fund it from the test-network faucet")
	ErrNoUsableUTXOs    = errors.New("could not parse any UTXOs from wallet")
	ErrBadDocumentHash  = errors.New("document hash must be exactly 64 lowercase hex characters")
)

// CertData carries the credential fields provided by the issuing operator.
// DocumentHash is mandatory; TextHash is present only when text extraction
// succeeded on a scanned document.
type CertData struct {
	StudentName        string
	Course             string
	Institution        string
	RegistrationNumber string
	Grade              string
	ProgramLevel       string
	IssuerInstitution  string
	DocumentHash       string
	TextHash           string
}

// MintResult reports a successful submission.
type MintResult struct {
	TxHash     string
	AssetLabel string
	PolicyID   types.PolicyID
}

// ParamsSource supplies protocol parameters, degrading to a fallback set
// internally. The chain-query client satisfies it.
type ParamsSource interface {
	ParamsOrFallback(ctx context.Context) *chainquery.ProtocolParams
}

// Config holds the issuer's static settings.
type Config struct {
	Network     types.Network
	IssuerType  string // e.g. the issuing authority's display name
	SystemLabel string // provenance tag embedded in every credential
}

// Issuer mints credential NFTs through a wallet session. Each Mint call is
// an independent unit of work; the issuer itself holds no per-mint state.
type Issuer struct {
	cfg    Config
	params ParamsSource
}

// New creates an issuer for the given network and parameter source.
func New(cfg Config, params ParamsSource) *Issuer {
	return &Issuer{cfg: cfg, params: params}
}

// Mint builds a single-asset minting transaction for the credential, has
// the wallet co-sign it, and submits it. The steps run strictly in order:
// each consumes the previous step's output, and the policy is derived from
// the wallet's own payment key so no other key can extend the collection.
func (i *Issuer) Mint(ctx context.Context, session wallet.Session, cert CertData) (*MintResult, error) {
	if !digest.ValidHex(cert.DocumentHash) {
		return nil, ErrBadDocumentHash
	}
	if cert.TextHash != "" && !digest.ValidHex(cert.TextHash) {
		return nil, fmt.Errorf("text hash: %w", ErrBadDocumentHash)
	}

	// Network gate: abort before any chain interaction.
	networkID, err := session.NetworkID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query wallet network: %w", err)
	}
	if networkID != int(i.cfg.Network) {
		return nil, fmt.Errorf("%w: wallet reports network %d", ErrWrongNetwork, networkID)
	}

	// Step 1: identity extraction.
	addr, err := wallet.FirstAddress(ctx, session)
	if err != nil {
		return nil, err
	}
	if addr.Network() != i.cfg.Network {
		return nil, fmt.Errorf("%w: address %s", ErrWrongNetwork, addr)
	}
	if !addr.IsBase() {
		return nil, ErrNotBaseAddress
	}
	paymentHash, err := addr.PaymentKeyHash()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPaymentKeyHash, err)
	}

	// Step 2: policy construction. The script hash is the policy ID.
	script := tx.NewSigScript(paymentHash)
	policy, err := script.Hash()
	if err != nil {
		return nil, fmt.Errorf("derive policy ID: %w", err)
	}

	// Step 3: asset naming.
	assetLabel := AssetLabel(cert.StudentName, time.Now())
	assetName, err := types.NewAssetName([]byte(assetLabel))
	if err != nil {
		return nil, fmt.Errorf("asset name: %w", err)
	}

	bech32, err := addr.Bech32()
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}
	log.Builder.Info().
		Str("address", bech32).
		Str("policy_id", policy.String()).
		Str("asset", assetLabel).
		Msg("minting credential")

	// Step 4: metadata assembly.
	aux := tx.NFTMetadata(policy, assetLabel, i.metadataFields(cert, assetLabel, bech32))

	// Steps 5 and 6: parameter acquisition and fee/size configuration.
	builder := tx.NewBuilder(i.params.ParamsOrFallback(ctx).BuilderConfig())

	// Step 7: mint instruction, quantity exactly 1.
	if err := builder.AddMintAsset(script, assetName, 1); err != nil {
		return nil, err
	}
	builder.SetAuxiliaryData(aux)

	// Step 8: pay the minted asset back to the issuing wallet.
	outValue := tx.Value{Coin: MintOutputLovelace, Assets: make(tx.MultiAsset)}
	outValue.Assets.Set(policy, assetName, 1)
	builder.AddOutput(addr.Bytes(), outValue)
	builder.SetChangeAddress(addr.Bytes())

	// Step 9: input selection from the wallet's UTXOs.
	utxos, err := i.collectUTXOs(ctx, session)
	if err != nil {
		return nil, err
	}
	builder.AddInputCandidates(utxos)

	// Step 10: build the unsigned envelope (script witness included).
	unsigned, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	return i.signAndSubmit(ctx, session, unsigned, assetLabel, policy)
}

// collectUTXOs parses the wallet's reported UTXOs, tolerating individually
// corrupted entries. Only a wallet with nothing usable at all is fatal.
func (i *Issuer) collectUTXOs(ctx context.Context, session wallet.Session) ([]tx.UTXO, error) {
	rawUTXOs, err := session.UTXOs(ctx)
	if err != nil {
		return nil, fmt.Errorf("query wallet UTXOs: %w", err)
	}
	if len(rawUTXOs) == 0 {
		return nil, ErrNoFunds
	}

	utxos := make([]tx.UTXO, 0, len(rawUTXOs))
	for _, raw := range rawUTXOs {
		u, err := tx.ParseUTXOHex(raw)
		if err != nil {
			log.Builder.Warn().Err(err).Msg("skipping unparseable UTXO")
			continue
		}
		utxos = append(utxos, *u)
	}
	if len(utxos) == 0 {
		return nil, ErrNoUsableUTXOs
	}
	log.Builder.Debug().Int("count", len(utxos)).Msg("parsed wallet UTXOs")
	return utxos, nil
}

// signAndSubmit runs the two-party signing protocol: the wallet partially
// signs (the script witness is already attached and must survive the
// merge), then the merged transaction is submitted through the wallet.
func (i *Issuer) signAndSubmit(ctx context.Context, session wallet.Session, unsigned *tx.Transaction, assetLabel string, policy types.PolicyID) (*MintResult, error) {
	unsignedHex, err := unsigned.Hex()
	if err != nil {
		return nil, err
	}

	walletWitnessHex, err := session.SignTx(ctx, unsignedHex, true)
	if err != nil {
		return nil, fmt.Errorf("wallet signing: %w", err)
	}

	signed, err := tx.MergeWalletWitnesses(unsigned, walletWitnessHex)
	if err != nil {
		return nil, fmt.Errorf("merge witnesses: %w", err)
	}
	signedHex, err := signed.Hex()
	if err != nil {
		return nil, err
	}

	txHash, err := session.SubmitTx(ctx, signedHex)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	log.Builder.Info().Str("tx_hash", txHash).Str("asset", assetLabel).Msg("credential minted")
	return &MintResult{TxHash: txHash, AssetLabel: assetLabel, PolicyID: policy}, nil
}

// metadataFields builds the flat field map embedded under the CIP-25
// structure. Every value is text; empty optional fields get an explicit
// placeholder so verifiers render a complete record.
func (i *Issuer) metadataFields(cert CertData, assetLabel, issuerBech32 string) map[string]string {
	orNotSpecified := func(s string) string {
		if s == "" {
			return "Not specified"
		}
		return s
	}
	return map[string]string{
		"name":               assetLabel,
		"description":        "Verified Academic Credential",
		"image":              DefaultImage,
		"mediaType":          DefaultMediaType,
		"studentName":        cert.StudentName,
		"course":             cert.Course,
		"institution":        orNotSpecified(cert.Institution),
		"registrationNumber": orNotSpecified(cert.RegistrationNumber),
		"grade":              orNotSpecified(cert.Grade),
		"programLevel":       orNotSpecified(cert.ProgramLevel),
		"issueDate":          time.Now().UTC().Format(time.RFC3339),
		"issuer":             issuerBech32,
		"issuerType":         i.cfg.IssuerType,
		"issuerInstitution":  orNotSpecified(cert.IssuerInstitution),
		"documentHash":       cert.DocumentHash,
		"textHash":           cert.TextHash,
		"standard":           MetadataStandard,
		"system":             i.cfg.SystemLabel,
	}
}
