package appinit

import (
	"fmt"

	ipfs "github.com/ipfs/go-ipfs-api"
	errors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SetupIPFSShell 创建 IPFS shell 并确认节点可达。
//
// 参数：
//   IPFS API 地址
//
// 返回：
//   IPFS shell
func SetupIPFSShell(apiURL string) (*ipfs.Shell, error) {
	sh := ipfs.NewShell(apiURL)
	if !sh.IsUp() {
		return nil, errors.Wrap(fmt.Errorf("IPFS 节点 '%v' 不可达", apiURL), "无法连接 IPFS 网络")
	}

	log.Infoln("IPFS 节点已连接。")
	return sh, nil
}
