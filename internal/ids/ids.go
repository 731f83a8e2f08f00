// Package ids generates record identifiers.
package ids

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// New returns a random 32-character hex id.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ShortGenerator issues short human-facing ids. Safe for concurrent use.
type ShortGenerator struct {
	node *snowflake.Node
}

// NewShortGenerator builds a generator for the given node number (0-1023).
// Distinct processes should use distinct nodes.
func NewShortGenerator(node int64) (*ShortGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return &ShortGenerator{node: n}, nil
}

// Next returns a base58 rendering of a fresh snowflake id.
func (g *ShortGenerator) Next() string {
	return g.node.Generate().Base58()
}
