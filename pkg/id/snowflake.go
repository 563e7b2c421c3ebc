package id

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out time-ordered int64 IDs unique per node.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a generator for the given node ID (0..1023).
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Next is safe for concurrent use.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
