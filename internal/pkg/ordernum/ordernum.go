// Package ordernum issues internal numbers for orders that have no source id.
package ordernum

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Prefix marks manually created orders.
const Prefix = "M-"

// Generator hands out unique, time ordered order numbers.
type Generator interface {
	Next() string
}

// SnowflakeGenerator is unique across processes as long as node ids differ.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

func (g *SnowflakeGenerator) Next() string {
	return Prefix + g.node.Generate().String()
}

var Module = fx.Provide(newGenerator)

func newGenerator(cfg *config.Config) (Generator, error) {
	return NewSnowflakeGenerator(cfg.OrderNodeID)
}
