package audit

import "time"

// AuditBatchReceipt 表示审计账本对一个非空证据批次完成锚定后产生的回执。
// 每个非空批次恰好产生一个回执，创建后不可变。
type AuditBatchReceipt struct {
	BatchID       string    `json:"batchID"`       // 批次 ID
	Sequence      uint64    `json:"sequence"`      // 回执序号。自 1 起单调递增，用于待定 wrap 的最早可绑定回执判定。
	MerkleRoot    string    `json:"merkleRoot"`    // 批次内证据 ID 的 Merkle 根（十六进制）
	AnchorTxID    string    `json:"anchorTxID"`    // 锚定交易 ID（本核心内为合成值）
	Confirmations int       `json:"confirmations"` // 锚定确认数
	Timestamp     time.Time `json:"timestamp"`     // 锚定时间戳
	Signature     []byte    `json:"signature"`     // 审计账本签名
}
