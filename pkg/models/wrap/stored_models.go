package wrap

import "time"

// 使用约束的键名。约束值一律为字符串。
const (
	// ConstraintMaxCalls 为会话内最大使用次数
	ConstraintMaxCalls = "maxCalls"
	// ConstraintPurpose 为用途标签
	ConstraintPurpose = "purpose"
)

// WrapToken 表示为特定接收会话包装的 DEK 令牌。
//
// 生命周期：由签发协调器在接受请求时创建为待定状态（无 IssuerSignature）；
// 在审计回执可用后完成签发（设置签名并绑定 BoundReceiptHash）；
// 在授权被撤销时置 Revoked（不可逆）。每个访问请求至多产生一个 WrapToken。
type WrapToken struct {
	WrapID                  string            `json:"wrapID"`                  // wrap 令牌 ID
	EncryptedDek            []byte            `json:"encryptedDek"`            // 为接收会话主机公钥加密后的 DEK
	RecipientSessionID      string            `json:"recipientSessionID"`      // 接收会话主机 ID
	RecipientKeyFingerprint string            `json:"recipientKeyFingerprint"` // 接收方公钥指纹
	ValidFrom               time.Time         `json:"validFrom"`               // 有效期起点
	ValidTo                 time.Time         `json:"validTo"`                 // 有效期终点。不得早于 ValidFrom。
	UsageConstraints        map[string]string `json:"usageConstraints"`        // 使用约束
	BoundReceiptHash        string            `json:"boundReceiptHash"`        // 绑定的审计回执批次 ID 的 SHA256（十六进制）。完成签发时设置。
	BoundAuthorizationHash  string            `json:"boundAuthorizationHash"`  // 绑定的授权 ID 的 SHA256（十六进制）。绑定哈希而非原始 ID，避免泄露账本内部命名。
	IssuerSignature         []byte            `json:"issuerSignature"`         // 签发方签名。待定状态下为空。
	Revoked                 bool              `json:"revoked"`                 // 是否已撤销。单调，置位后不可逆。
	RequestID               string            `json:"requestID"`               // 关联的访问请求 ID
}

// IsFinalized 报告令牌是否已完成签发。
func (w *WrapToken) IsFinalized() bool {
	return len(w.IssuerSignature) > 0
}

// IsWithinValidity 报告 `now` 是否处于令牌的有效期窗口内。
func (w *WrapToken) IsWithinValidity(now time.Time) bool {
	return !now.Before(w.ValidFrom) && !now.After(w.ValidTo)
}
