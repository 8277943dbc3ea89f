// statetool inspects and manipulates an on-disk global state database.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/kvstore"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/types"
	"github.com/urfave/cli/v2"
)

var (
	dbFlag = &cli.StringFlag{
		Name:     "db",
		Usage:    "directory of the state database",
		Required: true,
	}
	rootFlag = &cli.StringFlag{
		Name:     "root",
		Usage:    "state root hash to operate on",
		Required: true,
	}
	checkFlag = &cli.StringFlag{
		Name:  "check",
		Usage: "root hash to check for existence",
	}
	prefixFlag = &cli.StringFlag{
		Name:  "prefix",
		Usage: "hex prefix filtering the listed keys",
	}
	keyFlag = &cli.StringFlag{
		Name:     "key",
		Usage:    "canonical key in hex",
		Required: true,
	}
	proofFlag = &cli.BoolFlag{
		Name:  "proof",
		Usage: "verify the value's Merkle proof against the root",
	}
)

func main() {
	app := &cli.App{
		Name:  "statetool",
		Usage: "inspect and manipulate an on-disk global state",
		Flags: []cli.Flag{dbFlag},
		Commands: []*cli.Command{
			{
				Name:   "root",
				Usage:  "report the empty root and optionally check a root for existence",
				Flags:  []cli.Flag{checkFlag},
				Action: runRoot,
			},
			{
				Name:   "keys",
				Usage:  "list the keys stored under a root",
				Flags:  []cli.Flag{rootFlag, prefixFlag},
				Action: runKeys,
			},
			{
				Name:   "get",
				Usage:  "read the value stored under a key",
				Flags:  []cli.Flag{rootFlag, keyFlag, proofFlag},
				Action: runGet,
			},
			{
				Name:   "commit-demo",
				Usage:  "commit a block of demo effects and report the new root",
				Action: runCommitDemo,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("statetool failed", "err", err)
	}
}

func openState(ctx *cli.Context) (*state.GlobalState, error) {
	source, err := kvstore.OpenLevelDB(ctx.String(dbFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return state.NewGlobalState(source)
}

func parseRoot(ctx *cli.Context) (common.Hash, error) {
	var root common.Hash
	if err := root.UnmarshalText([]byte(ctx.String(rootFlag.Name))); err != nil {
		return common.EmptyHash, fmt.Errorf("invalid root hash: %w", err)
	}
	return root, nil
}

func runRoot(ctx *cli.Context) error {
	gs, err := openState(ctx)
	if err != nil {
		return err
	}
	defer gs.Close()

	fmt.Printf("empty root: %v\n", gs.EmptyRootHash())
	if text := ctx.String(checkFlag.Name); text != "" {
		var root common.Hash
		if err := root.UnmarshalText([]byte(text)); err != nil {
			return fmt.Errorf("invalid root hash: %w", err)
		}
		if _, err := gs.Checkout(root); err != nil {
			return err
		}
		fmt.Printf("root %v exists\n", root)
	}
	return nil
}

func runKeys(ctx *cli.Context) error {
	gs, err := openState(ctx)
	if err != nil {
		return err
	}
	defer gs.Close()

	root, err := parseRoot(ctx)
	if err != nil {
		return err
	}
	reader, err := gs.Checkout(root)
	if err != nil {
		return err
	}
	var prefix []byte
	if text := ctx.String(prefixFlag.Name); text != "" {
		prefix, err = hexutil.Decode(text)
		if err != nil {
			return fmt.Errorf("invalid prefix: %w", err)
		}
	}
	keys, err := reader.Keys(prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Printf("%v\n", key)
	}
	fmt.Printf("%d keys\n", len(keys))
	return nil
}

func runGet(ctx *cli.Context) error {
	gs, err := openState(ctx)
	if err != nil {
		return err
	}
	defer gs.Close()

	root, err := parseRoot(ctx)
	if err != nil {
		return err
	}
	raw, err := hexutil.Decode(ctx.String(keyFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	key, err := types.DecodeKey(raw)
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	reader, err := gs.Checkout(root)
	if err != nil {
		return err
	}

	if !ctx.Bool(proofFlag.Name) {
		value, found, err := reader.Read(key)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("key %v holds no value", key)
		}
		printValue(key, value)
		return nil
	}

	value, proof, found, err := reader.ReadWithProof(key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("key %v holds no value", key)
	}
	printValue(key, value)
	if !gs.VerifyProof(proof, root) {
		return fmt.Errorf("proof verification failed for root %v", root)
	}
	fmt.Printf("proof: verified against %v in %d steps\n", root, len(proof.Steps))
	return nil
}

func printValue(key types.Key, value types.StoredValue) {
	fmt.Printf("key:   %v\n", key)
	fmt.Printf("tag:   %d\n", value.Tag())
	fmt.Printf("value: %s\n", hexutil.Encode(types.EncodeValue(value)))
}

// runCommitDemo seeds a small world of accounts and balances on top of the
// empty root, demonstrating the commit path end to end.
func runCommitDemo(ctx *cli.Context) error {
	gs, err := openState(ctx)
	if err != nil {
		return err
	}
	defer gs.Close()

	effects := types.Effects{}
	for i := byte(1); i <= 3; i++ {
		var account, purse types.Address
		account[0] = i
		purseHash := common.HashOf([]byte("demo purse"), account[:])
		purse = types.AddressFromBytes(purseHash[:])
		effects = effects.
			Append(types.WriteTransform(types.AccountKey(account), &types.Account{MainPurse: purse})).
			Append(types.WriteTransform(types.BalanceKey(purse), types.U256Value(uint256.NewInt(uint64(i)*1000))))
	}
	root, err := gs.Commit(gs.EmptyRootHash(), effects)
	if err != nil {
		return err
	}
	log.Info("Committed demo effects", "transforms", len(effects), "root", root)
	fmt.Printf("new root: %v\n", root)
	return nil
}
