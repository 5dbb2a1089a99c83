package fabricledger

import (
	"github.com/hyperledger/fabric-sdk-go/pkg/client/channel"
)

// FabricChaincodeCtx 包含调用授权账本链码所需的上下文。
type FabricChaincodeCtx struct {
	ChannelID     string
	OrgName       string
	Username      string
	ChaincodeID   string
	ChannelClient *channel.Client
}
