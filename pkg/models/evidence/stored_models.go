package evidence

import "time"

// 审计证据的决策结果常量。
const (
	// DecisionRejectAuthorization 表示签发协调器因链上授权无效而拒绝请求
	DecisionRejectAuthorization = "REJECT_AUTHORIZATION"
	// DecisionAllowPendingReceipt 表示签发协调器接受请求，等待审计回执后完成签发
	DecisionAllowPendingReceipt = "ALLOW_PENDING_RECEIPT"
	// DecisionTeeUsageOk 表示执行会话内的一次成功使用
	DecisionTeeUsageOk = "TEE_USAGE_OK"
	// DecisionTeeRevokeAck 表示执行会话确认撤销并销毁密钥材料
	DecisionTeeRevokeAck = "TEE_REVOKE_ACK"
)

// EvidenceRecord 表示提交给审计账本的一条证据。只增不改，创建后不可变。
// 由签发协调器（决策类）与执行会话管理器（使用/撤销确认类）产生。
type EvidenceRecord struct {
	EvidenceID             string    `json:"evidenceID"`             // 证据 ID
	RequestID              string    `json:"requestID"`              // 关联的访问请求 ID
	RequesterDid           string    `json:"requesterDid"`           // 请求方 DID
	AttestationSummaryHash string    `json:"attestationSummaryHash"` // 远程证明摘要哈希
	DecisionResult         string    `json:"decisionResult"`         // 决策结果
	Timestamp              time.Time `json:"timestamp"`              // 证据产生时间戳
	IssuerSignature        []byte    `json:"issuerSignature"`        // 签发方（协调器）签名
	SessionSignature       []byte    `json:"sessionSignature"`       // 执行会话签名。仅使用/撤销确认类证据携带。
}
