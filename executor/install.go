package executor

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/state"
	"github.com/meridian-network/meridian/storage/tracking"
	"github.com/meridian-network/meridian/types"
)

// InstallRequest stores a new smart contract in the global state.
type InstallRequest struct {
	Initiator        types.Address
	Bytecode         []byte
	TransferredValue *uint256.Int
	// Constructor is an optional entry point run once after the contract
	// is stored. Its failure aborts the whole installation.
	Constructor      string
	ConstructorInput []byte
	// Seed disambiguates repeated installations of the same bytecode by
	// the same initiator.
	Seed            []byte
	GasLimit        types.Gas
	ChainName       string
	TransactionHash common.Hash
	Block           BlockInfo
}

// InstallResult reports a successful installation.
type InstallResult struct {
	ContractAddress   types.Address
	EntityAddress     types.Address
	Version           uint32
	MainPurse         types.Address
	ConstructorOutput []byte
	GasUsage          types.GasUsage
	Effects           types.Effects
	PostStateHash     common.Hash
}

// ConstructorError aborts an installation with the constructor's failure.
type ConstructorError struct {
	Host *HostError
}

func (e *ConstructorError) Error() string {
	return fmt.Sprintf("constructor failed: %v", e.Host)
}

func (e *ConstructorError) Unwrap() error {
	return e.Host
}

// ContractAddress derives the deterministic address a contract is installed
// under. It binds the chain, the installing account, the code, and the
// request seed, so re-running the same installation lands on the same
// address on every node.
func ContractAddress(chainName string, initiator types.Address, bytecode []byte, seed []byte) types.Address {
	codeHash := common.HashOf(bytecode)
	hash := common.HashOf([]byte(chainName), initiator[:], codeHash[:], seed)
	return types.AddressFromBytes(hash[:])
}

// InstallContract stores the contract's bytecode, package, entity, and a
// fresh main purse on top of the pre-state and commits the result. Nothing
// is committed if any step fails, including the constructor.
func (e *ExecutorV2) InstallContract(provider state.CommitProvider, pre common.Hash, req InstallRequest) (InstallResult, error) {
	reader, err := provider.Checkout(pre)
	if err != nil {
		return InstallResult{}, err
	}
	tc := tracking.New(reader, 0)
	generator := state.NewAddressGenerator(append(req.TransactionHash[:], req.Seed...))

	contractAddress := ContractAddress(req.ChainName, req.Initiator, req.Bytecode, req.Seed)
	if _, found, err := tc.Read(types.SmartContractKey(contractAddress)); err != nil {
		return InstallResult{}, err
	} else if found {
		return InstallResult{}, fmt.Errorf("contract %v already installed", contractAddress)
	}

	codeHash := common.HashOf(req.Bytecode)
	tc.Write(
		types.ByteCodeKey(types.ByteCodeKindV2Wasm, types.AddressFromBytes(codeHash[:])),
		&types.ByteCode{Kind: types.ByteCodeKindV2Wasm, Bytes: req.Bytecode},
	)

	purse := generator.NextAddress()
	if err := mintInto(tc, purse, uint256.NewInt(0)); err != nil {
		return InstallResult{}, err
	}
	if req.TransferredValue != nil && !req.TransferredValue.IsZero() {
		source, err := resolvePurse(tc, types.AccountKey(req.Initiator))
		if err != nil {
			return InstallResult{}, err
		}
		if err := transferBetweenPurses(tc, source, purse, req.TransferredValue); err != nil {
			return InstallResult{}, err
		}
	}

	entityAddress := contractAddress
	tc.Write(types.EntityKey(types.EntityKindContract, entityAddress), &types.Entity{
		Kind:         types.EntityKindContract,
		Runtime:      types.RuntimeV2,
		Package:      contractAddress,
		ByteCodeHash: codeHash,
		MainPurse:    purse,
	})
	tc.Write(types.SmartContractKey(contractAddress), &types.Package{
		Versions: []types.PackageVersion{{Number: 1, Entity: entityAddress}},
	})

	result := InstallResult{
		ContractAddress: contractAddress,
		EntityAddress:   entityAddress,
		Version:         1,
		MainPurse:       purse,
		GasUsage:        types.NewGasUsage(req.GasLimit, req.GasLimit),
	}
	if req.Constructor != "" {
		child := ExecuteRequest{
			Initiator:       req.Initiator,
			Caller:          types.AccountKey(req.Initiator),
			GasLimit:        req.GasLimit,
			Target:          StoredContract(contractAddress, req.Constructor),
			Input:           req.ConstructorInput,
			TransactionHash: req.TransactionHash,
			ChainName:       req.ChainName,
			Block:           req.Block,
		}
		constructed, err := e.execute(tc, child, &executionStack{}, generator)
		if err != nil {
			return InstallResult{}, err
		}
		if constructed.HostError != nil {
			return InstallResult{}, &ConstructorError{Host: constructed.HostError}
		}
		result.ConstructorOutput = constructed.Output
		result.GasUsage = constructed.GasUsage
	}

	post, err := provider.Commit(pre, tc.Effects())
	if err != nil {
		return InstallResult{}, err
	}
	result.Effects = tc.Effects()
	result.PostStateHash = post
	return result, nil
}
