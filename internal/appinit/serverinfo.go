package appinit

import (
	"io/ioutil"

	errors "github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// OperatingIdentity represents the client / user that performs the operation.
type OperatingIdentity struct {
	OrgName string `yaml:"orgName"` // The name of the organization to which the user that performs the operation belongs
	UserID  string `yaml:"userID"`  // The ID of the user
}

// FabricInfo 包含授权账本后端为 fabric 时所需的连接信息。
type FabricInfo struct {
	User        *OperatingIdentity `yaml:"user"`
	ChannelID   string             `yaml:"channelID"`
	ChaincodeID string             `yaml:"chaincodeID"`
}

// ProtocolKeyLocations 包含协议三方（签发方、会话主机、审计账本）的密钥对位置。
type ProtocolKeyLocations struct {
	Issuer      *KeyPairLocation `yaml:"issuer"`
	SessionHost *KeyPairLocation `yaml:"sessionHost"`
	Audit       *KeyPairLocation `yaml:"audit"`
}

// ServerInfo is the Go struct for contents in server.yaml.
type ServerInfo struct {
	Port                  int                   `yaml:"port"`
	ShowTimingLogs        bool                  `yaml:"showTimingLogs"`
	SessionHostID         string                `yaml:"sessionHostID"`         // 本进程承载的执行会话主机 ID
	WrapTTLSeconds        int                   `yaml:"wrapTTLSeconds"`        // wrap 令牌有效期秒数
	AnchorIntervalSeconds int                   `yaml:"anchorIntervalSeconds"` // 审计锚定周期秒数
	AuthLedgerBackend     string                `yaml:"authLedgerBackend"`     // 授权账本后端："mem" 或 "fabric"
	Fabric                *FabricInfo           `yaml:"fabric"`                // fabric 后端连接信息（后端为 fabric 时必填）
	MySQLDSN              string                `yaml:"mysqlDSN"`              // 本地数据库 DSN。留空则不启用数据库镜像。
	IPFSAPIURL            string                `yaml:"ipfsAPIURL"`            // IPFS API 地址。留空则密文只存本地。
	Keys                  *ProtocolKeyLocations `yaml:"keys"`
}

// LoadServerInfo loads the server config file (in YAML) which contains info needed to start a server.
//
// Parameters:
//   the path to the config file
//
// Returns:
//   the `ServerInfo` struct containing the info needed to start a server
func LoadServerInfo(configFilePath string) (ret ServerInfo, err error) {
	yamlStr, err := ioutil.ReadFile(configFilePath)
	if err != nil {
		err = errors.Wrap(err, "读取服务器配置文件失败")
		return
	}

	err = yaml.Unmarshal(yamlStr, &ret)
	if err != nil {
		err = errors.Wrap(err, "解析 YAML 文件时出现错误")
		return
	}

	return
}
