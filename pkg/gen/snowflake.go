package gen

import (
	"fmt"

	"airdrop-ledger/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("gen", fx.Provide(NewSnowflakeNode))

// NewSnowflakeNode returns the id generator for this process. Replicas that
// write concurrently need distinct NODE_ID values.
func NewSnowflakeNode(cfg *config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}
