package idutils

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

var sfNode *snowflake.Node
var sfNodeOnce sync.Once

// GenerateSnowflakeID 生成一个雪花 ID。节点在进程内只初始化一次。
func GenerateSnowflakeID() (string, error) {
	var err error
	sfNodeOnce.Do(func() {
		sfNode, err = snowflake.NewNode(1)
	})
	if err != nil {
		return "", errors.Wrap(err, "无法生成 ID")
	}
	if sfNode == nil {
		return "", errors.New("无法生成 ID")
	}

	return sfNode.Generate().String(), nil
}
