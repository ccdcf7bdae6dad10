package raffle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
)

var ErrUnexpectedEvent = errors.New("unexpected coordinator event")

// SubscriptionCreatedTopic is topic 0 of SubscriptionCreated(uint64,address).
var SubscriptionCreatedTopic = contracts.ParsedCoordinatorABI().Events["SubscriptionCreated"].ID

// SubscriptionCreated is the decoded coordinator event.
type SubscriptionCreated struct {
	SubID uint64
	Owner common.Address
}

// DecodeSubscriptionCreated finds the SubscriptionCreated log emitted by
// coordinator in receipt and decodes it.
func DecodeSubscriptionCreated(receipt *types.Receipt, coordinator common.Address) (*SubscriptionCreated, error) {
	if receipt == nil {
		return nil, fmt.Errorf("%w: no receipt", ErrUnexpectedEvent)
	}

	for _, vLog := range receipt.Logs {
		if vLog == nil || vLog.Address != coordinator {
			continue
		}
		if len(vLog.Topics) == 0 || vLog.Topics[0] != SubscriptionCreatedTopic {
			continue
		}
		return decodeSubscriptionCreated(vLog)
	}

	return nil, fmt.Errorf("%w: no SubscriptionCreated log from %s in tx %s (%d logs)",
		ErrUnexpectedEvent, coordinator.Hex(), receipt.TxHash.Hex(), len(receipt.Logs))
}

func decodeSubscriptionCreated(vLog *types.Log) (*SubscriptionCreated, error) {
	if len(vLog.Topics) != 2 {
		return nil, fmt.Errorf("%w: SubscriptionCreated has %d topics, want 2", ErrUnexpectedEvent, len(vLog.Topics))
	}

	subID := new(big.Int).SetBytes(vLog.Topics[1].Bytes())
	if !subID.IsUint64() {
		return nil, fmt.Errorf("%w: subscription id %s overflows uint64", ErrUnexpectedEvent, subID)
	}

	fields := make(map[string]interface{})
	if err := contracts.ParsedCoordinatorABI().UnpackIntoMap(fields, "SubscriptionCreated", vLog.Data); err != nil {
		return nil, fmt.Errorf("%w: failed to decode SubscriptionCreated data: %v", ErrUnexpectedEvent, err)
	}
	owner, ok := fields["owner"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: SubscriptionCreated has no owner", ErrUnexpectedEvent)
	}

	return &SubscriptionCreated{SubID: subID.Uint64(), Owner: owner}, nil
}
