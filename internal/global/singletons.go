package global

import (
	"github.com/hyperledger/fabric-sdk-go/pkg/client/channel"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/tjfoc/gmsm/sm2"
)

// ShowTimingLogs 控制是否输出计时日志（debug 级别）。
var ShowTimingLogs bool

// IssuerPrivateKey 为签发协调器的 SM2 私钥，用于签发 wrap 令牌与决策证据。
var IssuerPrivateKey *sm2.PrivateKey

// IssuerPublicKey 为签发协调器的 SM2 公钥。
var IssuerPublicKey *sm2.PublicKey

// SessionHostPrivateKey 为会话主机（TEE 边界）的 SM2 私钥，用于解封 DEK 与签署使用证据。
var SessionHostPrivateKey *sm2.PrivateKey

// SessionHostPublicKey 为会话主机的 SM2 公钥，DEK 为其加密包装。
var SessionHostPublicKey *sm2.PublicKey

// AuditPrivateKey 为审计账本的 SM2 私钥，用于签署批次回执。
var AuditPrivateKey *sm2.PrivateKey

// AuditPublicKey 为审计账本的 SM2 公钥。
var AuditPublicKey *sm2.PublicKey

// SDKInstance 为 Fabric SDK 实例。仅在授权账本后端为 fabric 时初始化。
var SDKInstance *fabsdk.FabricSDK

// ChannelClientInstances 为通道客户端单例。A lookup takes `channelID` followed by `orgName` and `username`.
var ChannelClientInstances map[string]map[string]map[string]*channel.Client
