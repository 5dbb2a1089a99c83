package request

import "time"

// AccessRequest 表示请求方提交给签发协调器的访问请求。
// 每个请求只被消费一次；重复提交按重复处理，不会被重新处理。
type AccessRequest struct {
	RequestID              string                 `json:"requestID"`              // 请求 ID
	RequesterDid           string                 `json:"requesterDid"`           // 请求方 DID
	ResourceID             string                 `json:"resourceID"`             // 资源 ID
	AuthorizationID        string                 `json:"authorizationID"`        // 授权账本上的授权 ID
	AttestationSummaryHash string                 `json:"attestationSummaryHash"` // 远程证明摘要哈希。本核心只检查其存在性。
	UsageParameters        map[string]interface{} `json:"usageParameters"`        // 使用参数（至少包含调用上限与用途标签）
	Timestamp              time.Time              `json:"timestamp"`              // 请求创建时间戳
	Signature              []byte                 `json:"signature"`              // 请求方签名
}

// UsageParams 是 `UsageParameters` 解码后的类型化形式。
type UsageParams struct {
	MaxCalls int    `mapstructure:"maxCalls"` // 会话内允许的最大使用次数
	Purpose  string `mapstructure:"purpose"`  // 用途标签
}
