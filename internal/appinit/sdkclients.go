package appinit

import (
	"fmt"

	"gitee.com/czyczk/wrapdek-sharing/internal/global"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/channel"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	errors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SetupSDK creates a Fabric SDK instance from the specified config file(s).
func SetupSDK(configFile string) error {
	configProvider := config.FromFile(configFile)
	sdk, err := fabsdk.New(configProvider)
	if err != nil {
		return fmt.Errorf("failed initializing Fabric SDK: %v", err)
	}
	global.SDKInstance = sdk

	return nil
}

// InstantiateChannelClient creates a channel client on the specified channel for the specified user in the specified org. The channel client will be available as singletons in `global.ChannelClientInstances`.
// Parameters:
//   initialized Fabric SDK instance
//   channel ID
//   organization name
//   user ID
func InstantiateChannelClient(sdk *fabsdk.FabricSDK, channelID, orgName, userID string) error {
	if global.ChannelClientInstances == nil {
		global.ChannelClientInstances = make(map[string]map[string]map[string]*channel.Client)
	}

	if global.ChannelClientInstances[channelID] == nil {
		global.ChannelClientInstances[channelID] = make(map[string]map[string]*channel.Client)
	}

	if global.ChannelClientInstances[channelID][orgName] == nil {
		global.ChannelClientInstances[channelID][orgName] = make(map[string]*channel.Client)
	}

	if global.ChannelClientInstances[channelID][orgName][userID] != nil {
		return fmt.Errorf("%v@%v 在通道 '%v' 上的通道客户端已实例化", userID, orgName, channelID)
	}

	// Creates a channel client instance. Channel clients can query chaincode, execute chaincode and register chaincode events on specific channel.
	clientCtx := sdk.ChannelContext(channelID, fabsdk.WithUser(userID), fabsdk.WithOrg(orgName))
	channelClient, err := channel.New(clientCtx)
	if err != nil {
		return errors.Wrapf(err, "无法在通道 '%v' 上为 %v@%v 创建通道客户端", channelID, userID, orgName)
	}
	global.ChannelClientInstances[channelID][orgName][userID] = channelClient

	log.Infof("已在通道 '%v' 上为 %v@%v 创建通道客户端。", channelID, userID, orgName)

	return nil
}
