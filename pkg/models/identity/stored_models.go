package identity

import "time"

// IdentityReceipt 表示 DID 注册处在一次查询或注册后返回的回执。
type IdentityReceipt struct {
	Did                  string    `json:"did"`                  // 去中心化标识符
	PublicKeyFingerprint string    `json:"publicKeyFingerprint"` // 该 DID 绑定的公钥指纹
	Timestamp            time.Time `json:"timestamp"`            // 注册时间戳
	ReceiptID            string    `json:"receiptID"`            // 回执 ID
}
