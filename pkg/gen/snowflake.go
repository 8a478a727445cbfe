package gen

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("snowflake",
	fx.Provide(NewNode),
)

func NewNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		zap.L().Fatal("failed to init snowflake node", zap.Error(err))
	}
	return node
}
