package badger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/marmos91/dittodav/pkg/repository"
)

func encodeNode(node *repository.Node) ([]byte, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node %s: %w", node.ID, err)
	}
	return data, nil
}

func decodeNode(data []byte) (*repository.Node, error) {
	var node repository.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return &node, nil
}

func encodeACL(aces []repository.ACE) ([]byte, error) {
	data, err := json.Marshal(aces)
	if err != nil {
		return nil, fmt.Errorf("failed to encode acl: %w", err)
	}
	return data, nil
}

func decodeACL(data []byte) ([]repository.ACE, error) {
	var aces []repository.ACE
	if err := json.Unmarshal(data, &aces); err != nil {
		return nil, fmt.Errorf("failed to decode acl: %w", err)
	}
	return aces, nil
}

func payloadDigest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return []byte(hex.EncodeToString(sum[:]))
}
